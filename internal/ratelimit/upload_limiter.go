package ratelimit

import (
	"context"
	"fmt"
	"time"

	"resume-analyzer-go/internal/constants"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/v9"
)

// uploadRateLimitScript 滑动窗口限流
// KEYS[1] = 限流key
// ARGV[1] = 窗口内允许的最大次数
// ARGV[2] = 窗口大小（毫秒）
// ARGV[3] = 当前时间戳（毫秒）
// ARGV[4] = 本次请求的唯一成员
// 返回: {1, 0} 允许; {0, 最早记录到期的剩余毫秒数} 拒绝
var uploadRateLimitScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local retry = window
    if oldest[2] then
        retry = tonumber(oldest[2]) + window - now
    end
    return {0, retry}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, 0}
`)

// UploadLimiter 基于Redis滑动窗口的按客户端上传限流器
// client 为 nil 时不做任何限制
type UploadLimiter struct {
	client redis.Scripter
	limit  int
	window time.Duration
	seq    func() string
}

// NewUploadLimiter 创建上传限流器，limit<=0 时默认每窗口10次，window<=0 时默认1分钟
func NewUploadLimiter(client redis.Scripter, limit int, window time.Duration) *UploadLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &UploadLimiter{
		client: client,
		limit:  limit,
		window: window,
		seq:    uniqueMember,
	}
}

// Enabled 是否配置了Redis
func (ul *UploadLimiter) Enabled() bool {
	return ul != nil && ul.client != nil
}

// Allow 检查客户端是否还能上传
// Redis 不可用时放行（fail open），同时返回错误供调用方记录日志
func (ul *UploadLimiter) Allow(ctx context.Context, clientID string) (bool, time.Duration, error) {
	if !ul.Enabled() {
		return true, 0, nil
	}

	now := time.Now().UnixMilli()
	key := fmt.Sprintf(constants.KeyUploadRateLimit, clientID)
	result, err := uploadRateLimitScript.Run(ctx, ul.client, []string{key},
		ul.limit, ul.window.Milliseconds(), now, fmt.Sprintf("%d-%s", now, ul.seq())).Int64Slice()
	if err != nil {
		return true, 0, fmt.Errorf("upload rate limit check failed: %w", err)
	}
	if len(result) != 2 {
		return true, 0, fmt.Errorf("unexpected result from rate limit script: %v", result)
	}

	if result[0] == 1 {
		return true, 0, nil
	}
	retryAfter := time.Duration(result[1]) * time.Millisecond
	if retryAfter <= 0 {
		retryAfter = time.Second
	}
	return false, retryAfter, nil
}

// uniqueMember 生成有序集合中的唯一成员，避免同一毫秒内的请求互相覆盖
func uniqueMember() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Must(uuid.NewV4()).String()
	}
	return id.String()
}
