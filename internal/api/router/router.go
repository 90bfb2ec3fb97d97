package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-analyzer-go/internal/api/handler"
	"resume-analyzer-go/internal/api/middleware"
)

// Options 路由注册所需的依赖
type Options struct {
	APIKey        string
	APIKeyEnabled bool
	UploadLimiter middleware.UploadLimiter
}

// RegisterRoutes 注册 API 路由和全局中间件
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, healthHandler *handler.HealthHandler, opts Options) {
	h.Use(
		middleware.RequestID(),
		middleware.CORS(),
		middleware.AccessLog(),
	)

	// 预检请求由 CORS 中间件直接应答
	h.OPTIONS("/*path", func(c context.Context, ctx *app.RequestContext) {
		ctx.Status(consts.StatusNoContent)
	})

	h.GET("/", healthHandler.Root)

	api := h.Group("/api")
	api.GET("/health", healthHandler.Health)
	api.GET("/readiness", healthHandler.Readiness)

	extract := []app.HandlerFunc{
		middleware.APIKeyAuth(opts.APIKey, opts.APIKeyEnabled),
		middleware.UploadRateLimit(opts.UploadLimiter),
		resumeHandler.Extract,
	}
	api.POST("/extract/", extract...)
	// 兼容旧的前端路径
	api.POST("/cv/extract/", extract...)

	api.GET("/formats", resumeHandler.SupportedFormats)
}
