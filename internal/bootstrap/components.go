// Package bootstrap 根据配置组装提取器、分析器和处理服务，供HTTP服务和命令行工具共用
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog"

	"resume-analyzer-go/internal/agent"
	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/logger"
	"resume-analyzer-go/internal/parser"
	"resume-analyzer-go/internal/processor"
	"resume-analyzer-go/internal/ratelimit"
)

// PDF解析引擎
const (
	PDFEngineEino       = "eino"
	PDFEngineLedongthuc = "ledongthuc"
)

// NewPageSource 按配置选择PDF解析引擎
func NewPageSource(ctx context.Context, cfg *config.Config) (parser.PageSource, error) {
	switch cfg.Extractor.PDFEngine {
	case PDFEngineLedongthuc:
		return parser.NewLedongthucPageSource(), nil
	case PDFEngineEino, "":
		source, err := parser.NewEinoPageSource(ctx, parser.WithEinoLogger(logger.NewStdLogger("EinoPDF", zerolog.DebugLevel)))
		if err != nil {
			return nil, fmt.Errorf("创建Eino PDF解析器失败: %w", err)
		}
		return source, nil
	default:
		return nil, fmt.Errorf("未知的PDF解析引擎: %s", cfg.Extractor.PDFEngine)
	}
}

// NewExtractors 创建所有文档提取器，目前只有PDF
func NewExtractors(ctx context.Context, cfg *config.Config) ([]processor.DocumentExtractor, error) {
	pages, err := NewPageSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pdf := parser.NewPDFExtractor(pages,
		parser.WithTempDir(cfg.Extractor.TempDir),
		parser.WithPDFLogger(logger.NewStdLogger("PDFExtractor", zerolog.DebugLevel)),
	)
	return []processor.DocumentExtractor{pdf}, nil
}

// NewChatModel 创建当前环境部署对应的 Azure OpenAI 模型，并套上QPM限流
func NewChatModel(cfg *config.Config) (model.ToolCallingChatModel, error) {
	if err := cfg.ValidateForServer(); err != nil {
		return nil, err
	}
	deployment := cfg.CurrentDeployment()

	azureModel, err := agent.NewAzureOpenAIChatModel(agent.AzureOpenAIConfig{
		Endpoint:    cfg.AzureOpenAI.Endpoint,
		APIKey:      cfg.AzureOpenAI.APIKey,
		APIVersion:  cfg.AzureOpenAI.APIVersion,
		Deployment:  deployment.Name,
		Temperature: cfg.AzureOpenAI.Temperature,
		MaxTokens:   cfg.AzureOpenAI.MaxTokens,
		Timeout:     config.GetDuration(cfg.AzureOpenAI.RequestTimeout, 0),
	}, agent.WithAzureLogger(logger.NewStdLogger("AzureOpenAI", zerolog.DebugLevel)))
	if err != nil {
		return nil, fmt.Errorf("创建Azure OpenAI模型失败: %w", err)
	}

	return ratelimit.NewLLMWithRateLimit(
		azureModel,
		deployment.Name,
		cfg.ModelQPMLimits,
		cfg.Analyzer.QPM,
		cfg.Analyzer.MaxRetries,
		time.Duration(cfg.Analyzer.RetryWaitSeconds)*time.Second,
	), nil
}

// NewAnalyzer 用给定模型创建简历分析器
func NewAnalyzer(cfg *config.Config, chatModel model.BaseChatModel) *parser.LLMResumeAnalyzer {
	return parser.NewLLMResumeAnalyzer(chatModel,
		parser.WithDeployment(cfg.CurrentDeployment().Name),
		parser.WithTemperature(cfg.AzureOpenAI.Temperature),
		parser.WithAnalyzeTimeout(config.GetDuration(cfg.Analyzer.Timeout, 0)),
		parser.WithAnalyzerLogger(logger.NewStdLogger("ResumeAnalyzer", zerolog.InfoLevel)),
	)
}

// NewResumeService 组装完整的处理流程。chatModel 为 nil 时不配置分析器（只能用于文本提取）
func NewResumeService(ctx context.Context, cfg *config.Config, chatModel model.BaseChatModel) (processor.ResumeService, error) {
	extractors, err := NewExtractors(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var analyzer processor.TextAnalyzer
	if chatModel != nil {
		analyzer = NewAnalyzer(cfg, chatModel)
	}

	return processor.NewResumeService(extractors, analyzer,
		processor.WithServiceLogger(logger.NewStdLogger("ResumeService", zerolog.InfoLevel)),
		processor.WithDebug(cfg.Logger.Level == "debug"),
	), nil
}
