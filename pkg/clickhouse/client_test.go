package clickhouse

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	cfg := *defaultConfig()
	cfg.Host = "ch.local"
	cfg.Database = "creditech"
	cfg.User = "default"
	cfg.Password = "s3cr#t"
	cfg.MaxExecTime = time.Minute
	cfg.AsyncInsert = true

	u, err := url.Parse(BuildDSN(cfg))
	require.NoError(t, err)
	assert.Equal(t, "clickhouse", u.Scheme)
	assert.Equal(t, "ch.local:9000", u.Host)
	assert.Equal(t, "/creditech", u.Path)

	pw, _ := u.User.Password()
	assert.Equal(t, "s3cr#t", pw)

	q := u.Query()
	assert.Equal(t, "60", q.Get("max_execution_time"))
	assert.Equal(t, "1", q.Get("async_insert"))
	assert.Empty(t, q.Get("wait_for_async_insert"))
	assert.Equal(t, "5s", q.Get("dial_timeout"))
	assert.Empty(t, q.Get("write_timeout"))
}

func TestBuildDSNHTTP(t *testing.T) {
	cfg := ClientConfig{Host: "localhost", Port: 8123, Database: "x", UseHTTP: true}
	assert.Equal(t, "http://localhost:8123/x", BuildDSN(cfg))
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(context.Background())
	assert.Error(t, err)
}
