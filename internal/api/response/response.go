package response

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
)

// ContextKeyRequestID 请求ID在 RequestContext 中的键
const ContextKeyRequestID = "request_id"

// 接口层错误类型，处理流程的错误类型来自 processor.ErrorKind
const (
	ErrorTypeValidation       = "validation_error"
	ErrorTypePermissionDenied = "permission_denied"
	ErrorTypeRateLimited      = "rate_limited"
	ErrorTypeFileTooLarge     = "file_too_large"
)

// ErrorBody 错误响应体
type ErrorBody struct {
	Detail    string `json:"detail"`
	ErrorType string `json:"error_type"`
	RequestID string `json:"request_id"`
}

// RequestID 返回当前请求的ID，未设置时为空
func RequestID(ctx *app.RequestContext) string {
	return ctx.GetString(ContextKeyRequestID)
}

// AbortWithError 写入统一格式的错误响应并中止后续处理
func AbortWithError(ctx *app.RequestContext, status int, detail, errorType string) {
	ctx.AbortWithStatusJSON(status, ErrorBody{
		Detail:    detail,
		ErrorType: errorType,
		RequestID: RequestID(ctx),
	})
}

// Message 简单的消息体
func Message(msg string) utils.H {
	return utils.H{"message": msg}
}
