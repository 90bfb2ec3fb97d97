package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType span 上 error.type 属性的取值，按处理阶段划分
type ErrorType string

const (
	ErrorTypeUnsupportedFormat ErrorType = "unsupported_format"
	ErrorTypeExtraction        ErrorType = "extraction"
	ErrorTypeAnalysis          ErrorType = "analysis"
	ErrorTypeTimeout           ErrorType = "timeout"
	ErrorTypeRedis             ErrorType = "redis"
	ErrorTypeInternal          ErrorType = "internal"
)

// RecordError 在 span 上记录错误及其类别，并把状态置为 Error。
// span 或 err 为 nil 时什么也不做。
func RecordError(span trace.Span, err error, errorType ErrorType, attrs ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}

	msg := err.Error()
	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", TruncateString(msg, DefaultMaxLength)),
	)
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Error, msg)
}
