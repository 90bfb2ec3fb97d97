package parser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-analyzer-go/internal/agent"
	"resume-analyzer-go/internal/processor"
	"resume-analyzer-go/internal/tracing"
	"resume-analyzer-go/internal/types"
)

var analyzerTracer = otel.Tracer("parser/analyzer")

// LLMResumeAnalyzer 基于大模型的简历结构化分析器
// 只持有模型客户端和不可变配置，可在多个请求间并发使用
type LLMResumeAnalyzer struct {
	llmModel    model.BaseChatModel
	deployment  string
	temperature float32
	timeout     time.Duration // 0 表示不额外设置超时
	logger      *log.Logger
}

// LLMResumeAnalyzerOption 分析器配置选项
type LLMResumeAnalyzerOption func(*LLMResumeAnalyzer)

// WithDeployment 设置模型部署名
func WithDeployment(deployment string) LLMResumeAnalyzerOption {
	return func(a *LLMResumeAnalyzer) {
		a.deployment = deployment
	}
}

// WithTemperature 设置生成温度
func WithTemperature(temperature float32) LLMResumeAnalyzerOption {
	return func(a *LLMResumeAnalyzer) {
		a.temperature = temperature
	}
}

// WithAnalyzeTimeout 为单次模型调用设置超时
func WithAnalyzeTimeout(timeout time.Duration) LLMResumeAnalyzerOption {
	return func(a *LLMResumeAnalyzer) {
		a.timeout = timeout
	}
}

// WithAnalyzerLogger 配置日志记录器
func WithAnalyzerLogger(logger *log.Logger) LLMResumeAnalyzerOption {
	return func(a *LLMResumeAnalyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewLLMResumeAnalyzer 创建分析器
func NewLLMResumeAnalyzer(llmModel model.BaseChatModel, options ...LLMResumeAnalyzerOption) *LLMResumeAnalyzer {
	a := &LLMResumeAnalyzer{
		llmModel:    llmModel,
		temperature: 0.1,
		logger:      log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Analyze 实现 processor.TextAnalyzer 接口
// 所有失败（调用错误、超时、非法JSON、字段缺失）都转换为分析错误
func (a *LLMResumeAnalyzer) Analyze(ctx context.Context, text string, opts processor.AnalyzeOptions) (*types.Resume, error) {
	ctx, span := analyzerTracer.Start(ctx, "AnalyzeResume")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.deployment", a.deployment),
		attribute.Float64("llm.temperature", float64(a.temperature)),
		attribute.Int("resume.text_length", len(text)),
		attribute.Bool("include_raw_text", opts.IncludeRawText),
	)

	resume, err := a.analyze(ctx, text, opts)
	if err != nil {
		a.logger.Printf("[LLMResumeAnalyzer] Error analyzing CV text: %v", err)
		errType := tracing.ErrorTypeAnalysis
		if errors.Is(err, context.DeadlineExceeded) {
			errType = tracing.ErrorTypeTimeout
		}
		tracing.RecordError(span, err, errType)
		return nil, processor.NewAnalysisError(err.Error())
	}

	span.SetAttributes(
		attribute.Int("resume.trainings", len(resume.Trainings)),
		attribute.Int("resume.experiences", len(resume.Experiences)),
		attribute.String("resume.email", tracing.SafeAttributeValue("resume.email", resume.Email, tracing.DefaultMaxLength)),
		attribute.String("resume.profession", tracing.SafeAttributeValue("resume.profession", resume.Profession, tracing.DefaultMaxLength)),
	)
	span.SetStatus(codes.Ok, "")
	return resume, nil
}

func (a *LLMResumeAnalyzer) analyze(ctx context.Context, text string, opts processor.AnalyzeOptions) (*types.Resume, error) {
	if a.llmModel == nil {
		return nil, errors.New("llm model is not initialized")
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	messages := []*einoschema.Message{
		einoschema.SystemMessage(defaultResumeSystemPrompt),
		einoschema.UserMessage(buildResumeUserPrompt(text)),
	}
	callOpts := []model.Option{
		model.WithTemperature(a.temperature),
		agent.WithJSONResponse(),
	}
	if a.deployment != "" {
		callOpts = append(callOpts, model.WithModel(a.deployment))
	}
	if opts.RequestID != "" {
		callOpts = append(callOpts, agent.WithUser(opts.RequestID))
	}

	// 简历正文含个人信息，只记录长度和摘要
	a.logger.Printf("[LLMResumeAnalyzer] Analyzing resume text: %d chars, sha256=%s", len(text), textDigest(text))

	startTime := time.Now()
	response, err := a.llmModel.Generate(ctx, messages, callOpts...)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	if response == nil {
		return nil, ErrEmptyLLMResponse
	}
	a.logger.Printf("[LLMResumeAnalyzer] LLM responded in %.2fs (%d chars)", time.Since(startTime).Seconds(), len(response.Content))

	return ParseResumeJSON(response.Content)
}

// textDigest 文本的短摘要，用于在日志中关联同一份简历
func textDigest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:6])
}
