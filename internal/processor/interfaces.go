package processor

import (
	"context"

	"resume-analyzer-go/internal/types"
)

//
// 文档提取相关接口
//

// DocumentExtractor 文档文本提取器接口，每种文件格式一个实现
type DocumentExtractor interface {
	// CanHandle 根据文件名扩展名（不区分大小写）判断是否支持该文件
	CanHandle(fileName string) bool

	// ExtractText 从文件内容中提取纯文本
	// 返回的文本保证非空且不全为空白，否则返回提取错误。
	// 实现必须在任何退出路径上释放临时资源（例如临时文件）。
	ExtractText(ctx context.Context, content []byte, fileName string) (string, error)
}

// ExtensionReporter 可选接口，提取器借此声明其支持的扩展名
type ExtensionReporter interface {
	SupportedExtensions() []string
}

//
// 文本分析相关接口
//

// AnalyzeOptions 单次分析请求的选项
type AnalyzeOptions struct {
	// IncludeRawText 是否希望调用方回显原始文本，核心流程只透传该标志
	IncludeRawText bool
	// RequestID 请求标识，分析器透传给模型服务用于审计，可以为空
	RequestID string
}

// TextAnalyzer 文本分析器接口，将纯文本转换为结构化简历
type TextAnalyzer interface {
	// Analyze 返回完整有效的简历记录，或返回分析错误，绝不返回部分结果
	Analyze(ctx context.Context, text string, opts AnalyzeOptions) (*types.Resume, error)
}
