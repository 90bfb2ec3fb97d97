package middleware

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/gofrs/uuid/v5"

	"resume-analyzer-go/internal/api/response"
	"resume-analyzer-go/internal/logger"
)

// HeaderRequestID 请求ID头
const HeaderRequestID = "X-Request-ID"

// RequestID 透传或生成请求ID（UUIDv7），写入响应头和日志上下文
func RequestID() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		id := string(ctx.GetHeader(HeaderRequestID))
		if id == "" {
			id = newRequestID()
		}
		ctx.Set(response.ContextKeyRequestID, id)
		ctx.Response.Header.Set(HeaderRequestID, id)

		ctx.Next(logger.WithRequestID(c, id))
	}
}

func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.Must(uuid.NewV4()).String()
}

// AccessLog 记录每个请求的方法、路径、状态码和耗时
func AccessLog() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		hlog.CtxInfof(c, "请求: %s %s | 状态码: %d | 耗时: %v | request_id: %s",
			ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start), response.RequestID(ctx))
	}
}
