package middleware

import (
	"context"
	"crypto/subtle"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"resume-analyzer-go/internal/api/response"
)

// HeaderAPIKey API密钥请求头
const HeaderAPIKey = "X-API-Key"

// ContextKeyAPIKey 校验通过后密钥存放的键
const ContextKeyAPIKey = "api_key"

// MsgInvalidAPIKey 密钥缺失或错误时的提示
const MsgInvalidAPIKey = "Invalid or missing API key"

// APIKeyAuth 校验 X-API-Key 请求头。enabled 为 false 时（开发环境未配置密钥）直接放行
func APIKeyAuth(apiKey string, enabled bool) app.HandlerFunc {
	if !enabled {
		return func(c context.Context, ctx *app.RequestContext) {
			ctx.Next(c)
		}
	}

	expected := []byte(apiKey)
	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+HeaderAPIKey, ""),
		keyauth.WithContextKey(ContextKeyAPIKey),
		keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), expected) == 1, nil
		}),
		keyauth.WithErrorHandler(func(c context.Context, ctx *app.RequestContext, err error) {
			hlog.CtxWarnf(c, "API密钥校验失败: path=%s, ip=%s", ctx.Path(), ctx.ClientIP())
			response.AbortWithError(ctx, consts.StatusForbidden, MsgInvalidAPIKey, response.ErrorTypePermissionDenied)
		}),
	)
}
