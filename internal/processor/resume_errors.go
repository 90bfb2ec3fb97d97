package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型，四类错误互不重叠
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrExtractionFailed  = errors.New("failed to extract text from document")
	ErrAnalysisFailed    = errors.New("failed to analyze CV")
	ErrUnexpected        = errors.New("an unexpected error occurred")
)

// ErrorKind 错误类别，用于日志、追踪和HTTP映射
type ErrorKind string

const (
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindExtraction        ErrorKind = "extraction_error"
	KindAnalysis          ErrorKind = "analysis_error"
	KindUnexpected        ErrorKind = "unexpected_error"
)

// ResumeProcessError 包含详细错误信息的自定义错误
type ResumeProcessError struct {
	Kind     ErrorKind
	Op       string
	FileName string
	BaseErr  error
	Detail   string
}

func (e *ResumeProcessError) Error() string {
	switch {
	case e.Kind == KindUnsupportedFormat:
		return fmt.Sprintf("Unsupported file format: %s", e.FileName)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.BaseErr, e.Detail)
	default:
		return e.BaseErr.Error()
	}
}

func (e *ResumeProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ResumeProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数

func NewUnsupportedFormatError(fileName string) error {
	return &ResumeProcessError{
		Kind:     KindUnsupportedFormat,
		Op:       "select_extractor",
		FileName: fileName,
		BaseErr:  ErrUnsupportedFormat,
	}
}

func NewExtractionError(fileName, detail string) error {
	return &ResumeProcessError{
		Kind:     KindExtraction,
		Op:       "extract",
		FileName: fileName,
		BaseErr:  ErrExtractionFailed,
		Detail:   detail,
	}
}

func NewAnalysisError(detail string) error {
	return &ResumeProcessError{
		Kind:    KindAnalysis,
		Op:      "analyze",
		BaseErr: ErrAnalysisFailed,
		Detail:  detail,
	}
}

func NewUnexpectedError(detail string) error {
	return &ResumeProcessError{
		Kind:    KindUnexpected,
		Op:      "process",
		BaseErr: ErrUnexpected,
		Detail:  detail,
	}
}

// KindOf 返回错误所属类别，未分类的错误返回空字符串
func KindOf(err error) ErrorKind {
	var rpe *ResumeProcessError
	if errors.As(err, &rpe) {
		return rpe.Kind
	}
	return ""
}

// DetailOf 返回错误携带的详情（不含类别前缀）
func DetailOf(err error) string {
	var rpe *ResumeProcessError
	if errors.As(err, &rpe) {
		return rpe.Detail
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
