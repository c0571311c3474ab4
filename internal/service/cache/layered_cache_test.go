package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	*TTLCache
	gets int
	err  error
}

func (c *countingCache) GetBytes(key string) ([]byte, bool, error) {
	c.gets++
	if c.err != nil {
		return nil, false, c.err
	}
	return c.TTLCache.GetBytes(key)
}

func (c *countingCache) SetBytes(key string, v []byte, ttl time.Duration) error {
	if c.err != nil {
		return c.err
	}
	return c.TTLCache.SetBytes(key, v, ttl)
}

func TestLayeredCachePromotesL2Hits(t *testing.T) {
	l2 := &countingCache{TTLCache: NewTTLCache()}
	require.NoError(t, l2.TTLCache.SetBytes("sgs:11", []byte("[]"), time.Hour))
	lc := NewLayeredCache(l2, time.Minute)

	b, ok, err := lc.GetBytes("sgs:11")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(b))

	_, ok, _ = lc.GetBytes("sgs:11")
	assert.True(t, ok)
	assert.Equal(t, 1, l2.gets, "second read served from L1")
}

func TestLayeredCacheL2Failure(t *testing.T) {
	boom := errors.New("redis down")
	lc := NewLayeredCache(&countingCache{TTLCache: NewTTLCache(), err: boom}, time.Minute)

	assert.ErrorIs(t, lc.SetBytes("k", []byte("v"), time.Hour), boom)
	b, ok, err := lc.GetBytes("k")
	require.NoError(t, err)
	assert.True(t, ok, "L1 still holds the write")
	assert.Equal(t, "v", string(b))

	_, ok, err = lc.GetBytes("missing")
	assert.ErrorIs(t, err, boom)
	assert.False(t, ok)
}
