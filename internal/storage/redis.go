package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/tracing"
)

// ErrRedisNotInitialized 客户端未初始化
var ErrRedisNotInitialized = errors.New("redis client is not initialized")

var redisTracer = otel.Tracer("resume-analyzer/storage/redis")

// Redis 包装 go-redis 客户端，供上传限流与就绪检查使用
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 根据配置创建Redis连接并检查连通性
func NewRedisAdapter(ctx context.Context, cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(clientOptions(cfg))

	// 所有Redis命令都会产生span
	if err := redisotel.InstrumentTracing(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{Client: client, config: cfg}, nil
}

func clientOptions(cfg *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,

		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute,
	}
}

// Name 就绪检查中的名称
func (r *Redis) Name() string { return "redis" }

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	ctx, span := redisTracer.Start(ctx, "Redis.Ping", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if r == nil || r.Client == nil {
		tracing.RecordError(span, ErrRedisNotInitialized, tracing.ErrorTypeRedis)
		return ErrRedisNotInitialized
	}

	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.redis.database", strconv.Itoa(r.config.DB)),
		attribute.String("net.peer.name", r.config.Address),
	)

	if err := r.Client.Ping(ctx).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("redis ping failed: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
