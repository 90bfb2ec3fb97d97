package handler

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-analyzer-go/internal/logger"
)

// 就绪检查单项的超时时间
const readinessCheckTimeout = 2 * time.Second

// ReadinessCheck 就绪检查依赖项（例如 Redis）
type ReadinessCheck interface {
	Name() string
	Ping(ctx context.Context) error
}

// ServiceInfo 服务的基本信息
type ServiceInfo struct {
	Name        string
	Version     string
	Environment string
}

// HealthHandler 根路径、健康检查和就绪检查
type HealthHandler struct {
	info          ServiceInfo
	analyzerReady bool
	checks        []ReadinessCheck
	now           func() time.Time
}

// NewHealthHandler 创建健康检查处理器，analyzerReady 表示分析器（LLM部署）是否已配置
func NewHealthHandler(info ServiceInfo, analyzerReady bool, checks ...ReadinessCheck) *HealthHandler {
	registered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			registered = append(registered, check)
		}
	}
	return &HealthHandler{
		info:          info,
		analyzerReady: analyzerReady,
		checks:        registered,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Root GET /
func (h *HealthHandler) Root(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, utils.H{
		"message":     fmt.Sprintf("Welcome to the %s API!", h.info.Name),
		"version":     h.info.Version,
		"environment": h.info.Environment,
	})
}

// Health GET /api/health，只要进程存活就返回 healthy
func (h *HealthHandler) Health(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, utils.H{
		"status":      "healthy",
		"service":     h.info.Name,
		"timestamp":   h.now().Format(time.RFC3339),
		"version":     h.info.Version,
		"go_version":  strings.TrimPrefix(runtime.Version(), "go"),
		"environment": h.info.Environment,
	})
}

// Readiness GET /api/readiness，分析器未配置或依赖不可用时返回 503
func (h *HealthHandler) Readiness(c context.Context, ctx *app.RequestContext) {
	checks := map[string]string{"basic": "ok"}
	var failures []string

	if h.analyzerReady {
		checks["analyzer"] = "ok"
	} else {
		checks["analyzer"] = "not_configured"
		failures = append(failures, "analyzer is not configured")
	}

	for _, check := range h.checks {
		pingCtx, cancel := context.WithTimeout(c, readinessCheckTimeout)
		err := check.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Ctx(c).Warn().Err(err).Str("check", check.Name()).Msg("就绪检查失败")
			checks[check.Name()] = "error"
			failures = append(failures, fmt.Sprintf("%s: %v", check.Name(), err))
			continue
		}
		checks[check.Name()] = "ok"
	}

	body := utils.H{
		"status":    "ready",
		"service":   h.info.Name,
		"timestamp": h.now().Format(time.RFC3339),
		"checks":    checks,
	}
	if len(failures) > 0 {
		body["status"] = "not_ready"
		body["error"] = strings.Join(failures, "; ")
		ctx.JSON(consts.StatusServiceUnavailable, body)
		return
	}
	ctx.JSON(consts.StatusOK, body)
}
