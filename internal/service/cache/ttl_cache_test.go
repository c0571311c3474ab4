package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes("k", []byte("v"), time.Minute))
	require.NoError(t, c.SetBytes("forever", []byte("x"), 0))

	b, ok, err := c.GetBytes("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.GetBytes("k")
	assert.False(t, ok)
	_, ok, _ = c.GetBytes("forever")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

var _ BytesCache = (*TTLCache)(nil)
var _ BytesCache = (*RedisCache)(nil)
