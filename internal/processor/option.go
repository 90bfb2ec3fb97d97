package processor

import (
	"fmt"
	"io"
	"log"
)

// ServiceOpt 服务选项类型，仅改变 Settings 结构体内的字段
type ServiceOpt func(*Settings)

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	Debug  bool        // 是否开启调试模式（输出状态流转日志）
	Logger *log.Logger // 日志记录器
}

func defaultSettings() *Settings {
	return &Settings{
		Logger: log.New(io.Discard, "", 0),
	}
}

// WithServiceLogger 设置服务日志记录器，传入nil时使用丢弃型记录器
func WithServiceLogger(logger *log.Logger) ServiceOpt {
	return func(s *Settings) {
		if logger != nil {
			s.Logger = logger
		} else {
			s.Logger = log.New(io.Discard, "", 0)
		}
	}
}

// WithDebug 设置调试模式
func WithDebug(debug bool) ServiceOpt {
	return func(s *Settings) {
		s.Debug = debug
	}
}

// logDebug 记录调试级别日志
func (s *Settings) logDebug(format string, args ...interface{}) {
	if s.Debug && s.Logger != nil {
		s.Logger.Printf("[DEBUG] "+format, args...)
	}
}

// logInfo 记录信息级别日志
func (s *Settings) logInfo(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

// logWarn 记录警告级别日志
func (s *Settings) logWarn(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf("[WARN] "+format, args...)
	}
}

// logError 记录错误级别日志
func (s *Settings) logError(err error, format string, args ...interface{}) {
	if s.Logger == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		s.Logger.Printf("ERROR: %v - %s", err, msg)
		return
	}
	s.Logger.Printf("ERROR: %s", msg)
}
