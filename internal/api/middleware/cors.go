package middleware

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// CORS 允许所有来源、方法和请求头，预检请求直接返回 204
func CORS() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		origin := string(ctx.GetHeader("Origin"))
		if origin == "" {
			origin = "*"
		}
		ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
		ctx.Response.Header.Set("Access-Control-Allow-Credentials", "true")
		ctx.Response.Header.Set("Access-Control-Expose-Headers", HeaderRequestID)
		ctx.Response.Header.Add("Vary", "Origin")

		if string(ctx.Method()) != http.MethodOptions {
			ctx.Next(c)
			return
		}

		methods := string(ctx.GetHeader("Access-Control-Request-Method"))
		if methods == "" {
			methods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
		}
		ctx.Response.Header.Set("Access-Control-Allow-Methods", methods)
		if headers := ctx.GetHeader("Access-Control-Request-Headers"); len(headers) > 0 {
			ctx.Response.Header.Set("Access-Control-Allow-Headers", string(headers))
		} else {
			ctx.Response.Header.Set("Access-Control-Allow-Headers", "*")
		}
		ctx.Response.Header.Set("Access-Control-Max-Age", "600")
		ctx.AbortWithStatus(consts.StatusNoContent)
	}
}
