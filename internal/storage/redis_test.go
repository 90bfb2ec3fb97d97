package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer-go/internal/config"
)

func TestNewRedisAdapter_InvalidConfig(t *testing.T) {
	_, err := NewRedisAdapter(context.Background(), nil)
	assert.EqualError(t, err, "redis config cannot be nil")

	_, err = NewRedisAdapter(context.Background(), &config.RedisConfig{})
	assert.EqualError(t, err, "redis address is required")
}

func TestNewRedisAdapter_Unreachable(t *testing.T) {
	cfg := &config.RedisConfig{
		Address:            "127.0.0.1:1",
		DialTimeoutSeconds: 1,
		MaxRetries:         -1,
	}
	start := time.Now()
	_, err := NewRedisAdapter(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis at 127.0.0.1:1")
	assert.Less(t, time.Since(start), 6*time.Second)
}

func TestClientOptions(t *testing.T) {
	opt := clientOptions(&config.RedisConfig{
		Address:                "localhost:6379",
		Password:               "pw",
		DB:                     2,
		PoolSize:               10,
		DialTimeoutSeconds:     5,
		MinRetryBackoffMS:      8,
		ConnMaxLifetimeMinutes: 60,
	})
	assert.Equal(t, "localhost:6379", opt.Addr)
	assert.Equal(t, 2, opt.DB)
	assert.Equal(t, 10, opt.PoolSize)
	assert.Equal(t, 5*time.Second, opt.DialTimeout)
	assert.Equal(t, 8*time.Millisecond, opt.MinRetryBackoff)
	assert.Equal(t, time.Hour, opt.ConnMaxLifetime)
}

func TestRedis_NilSafe(t *testing.T) {
	var r *Redis
	assert.NoError(t, r.Close())
	assert.ErrorIs(t, r.Ping(context.Background()), ErrRedisNotInitialized)
	assert.Equal(t, "redis", (&Redis{}).Name())
}
