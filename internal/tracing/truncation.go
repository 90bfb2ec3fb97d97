package tracing

import (
	"strings"
)

const (
	// DefaultMaxLength span 属性值的默认最大长度（按字符计）
	DefaultMaxLength = 200
)

// piiKeys 属性名最后一段（按 "." 切分）命中这些名字时，值按个人信息处理
var piiKeys = map[string]bool{
	"first_name":   true,
	"last_name":    true,
	"full_name":    true,
	"email":        true,
	"phone":        true,
	"phone_number": true,
	"address":      true,
	"api_key":      true,
	"token":        true,
	"password":     true,
}

// SafeAttributeValue 返回可以放进 span 属性或日志的值：
// 个人信息做掩码，其他内容按 maxLength 截断
func SafeAttributeValue(key, value string, maxLength int) string {
	field := strings.ToLower(key)
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	if piiKeys[field] {
		return MaskPII(value)
	}
	return TruncateString(value, maxLength)
}

// MaskPII 只保留首尾少量字符，例如 "john@example.com" -> "jo************om"
func MaskPII(value string) string {
	runes := []rune(value)
	switch n := len(runes); {
	case n == 0:
		return ""
	case n == 1:
		return "*"
	case n == 2:
		return string(runes[:1]) + "*"
	case n <= 4:
		return string(runes[:1]) + strings.Repeat("*", n-2) + string(runes[n-1:])
	default:
		return string(runes[:2]) + strings.Repeat("*", n-4) + string(runes[n-2:])
	}
}

// TruncateString 超长时保留首尾，中间以 "..." 连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	keep := (maxLength - 3) / 2
	return string(runes[:keep]) + "..." + string(runes[len(runes)-keep:])
}
