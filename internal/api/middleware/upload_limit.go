package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-analyzer-go/internal/api/response"
)

// UploadLimiter 按客户端限制上传频率
type UploadLimiter interface {
	Enabled() bool
	Allow(ctx context.Context, clientID string) (bool, time.Duration, error)
}

// UploadRateLimit 超过限额返回 429 并带 Retry-After；限流器出错时放行
func UploadRateLimit(limiter UploadLimiter) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if limiter == nil || !limiter.Enabled() {
			ctx.Next(c)
			return
		}

		clientID := ctx.ClientIP()
		allowed, retryAfter, err := limiter.Allow(c, clientID)
		if err != nil {
			hlog.CtxWarnf(c, "上传限流检查失败，放行请求: client=%s, err=%v", clientID, err)
		}
		if allowed {
			ctx.Next(c)
			return
		}

		seconds := int(math.Ceil(retryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		ctx.Response.Header.Set("Retry-After", strconv.Itoa(seconds))
		response.AbortWithError(ctx, consts.StatusTooManyRequests,
			fmt.Sprintf("Too many uploads. Retry in %d seconds.", seconds), response.ErrorTypeRateLimited)
	}
}
