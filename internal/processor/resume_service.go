package processor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"resume-analyzer-go/internal/tracing"
	"resume-analyzer-go/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrAnalyzerNotInit = errors.New("analyzer is not initialized") // 分析器未初始化错误
	ErrEmptyRecord     = errors.New("analyzer returned no record") // 分析器返回空结果
)

// 定义tracer
var tracer = otel.Tracer("processor")

// pipelineState 处理流水线的状态
type pipelineState string

const (
	stateSelectingExtractor pipelineState = "selecting-extractor"
	stateExtracting         pipelineState = "extracting"
	stateAnalyzing          pipelineState = "analyzing"
	stateDone               pipelineState = "done"
	stateError              pipelineState = "error"
)

// ResumeService 定义简历处理服务的接口
// 提供统一的服务层接口，隐藏提取器和分析器的细节
type ResumeService interface {
	// Process 处理单个简历文件：选择提取器 -> 提取文本 -> 分析 -> 返回结构化记录
	Process(ctx context.Context, content []byte, fileName string, opts AnalyzeOptions) (*types.Resume, error)

	// SupportedExtensions 返回所有已注册提取器声明的扩展名
	SupportedExtensions() []string
}

// resumeServiceImpl 是ResumeService的实现
// 无状态，可以被多个并发请求安全复用
type resumeServiceImpl struct {
	extractors []DocumentExtractor
	analyzer   TextAnalyzer
	settings   *Settings
}

// NewResumeService 创建简历处理服务
// extractors 按顺序匹配，第一个 CanHandle 返回 true 的提取器被使用
func NewResumeService(extractors []DocumentExtractor, analyzer TextAnalyzer, opts ...ServiceOpt) ResumeService {
	settings := defaultSettings()
	for _, opt := range opts {
		opt(settings)
	}

	registry := make([]DocumentExtractor, 0, len(extractors))
	for _, e := range extractors {
		if e != nil {
			registry = append(registry, e)
		}
	}

	return &resumeServiceImpl{
		extractors: registry,
		analyzer:   analyzer,
		settings:   settings,
	}
}

// Process 实现 ResumeService 接口
func (s *resumeServiceImpl) Process(ctx context.Context, content []byte, fileName string, opts AnalyzeOptions) (resume *types.Resume, err error) {
	ctx, span := tracer.Start(ctx, "ProcessResume",
		trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	startTime := time.Now()
	span.SetAttributes(
		attribute.String("file.name", tracing.TruncateString(fileName, tracing.DefaultMaxLength)),
		attribute.Int("file.size_bytes", len(content)),
		attribute.Bool("include_raw_text", opts.IncludeRawText),
	)

	// 协作组件的panic统一转换为未预期错误，不让其冒泡到调用方
	defer func() {
		if r := recover(); r != nil {
			s.settings.logError(nil, "处理简历时发生panic: %v\n%s", r, debug.Stack())
			resume = nil
			err = NewUnexpectedError(fmt.Sprintf("%v", r))
			s.transition(span, stateError)
			tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		}
	}()

	s.transition(span, stateSelectingExtractor)
	extractor := s.selectExtractor(fileName)
	if extractor == nil {
		err = NewUnsupportedFormatError(fileName)
		s.settings.logWarn("没有可处理该文件的提取器: %s", fileName)
		return nil, s.fail(span, err)
	}

	s.transition(span, stateExtracting)
	text, err := extractor.ExtractText(ctx, content, fileName)
	if err != nil {
		return nil, s.fail(span, s.classify(err))
	}
	span.SetAttributes(attribute.Int("text_length", len(text)))
	span.AddEvent("text_extraction_completed")

	if s.analyzer == nil {
		return nil, s.fail(span, s.classify(ErrAnalyzerNotInit))
	}

	s.transition(span, stateAnalyzing)
	resume, err = s.analyzer.Analyze(ctx, text, opts)
	if err != nil {
		return nil, s.fail(span, s.classify(err))
	}
	if resume == nil {
		return nil, s.fail(span, s.classify(ErrEmptyRecord))
	}

	s.transition(span, stateDone)
	span.SetAttributes(
		attribute.Int("resume.experience_count", len(resume.Experiences)),
		attribute.Int("resume.training_count", len(resume.Trainings)),
		attribute.Int64("duration_ms", time.Since(startTime).Milliseconds()),
	)
	span.SetStatus(codes.Ok, "处理成功")
	s.settings.logInfo("简历处理完成: 文件=%s, 经历=%d, 教育=%d (用时 %.2f秒)",
		fileName, len(resume.Experiences), len(resume.Trainings), time.Since(startTime).Seconds())
	return resume, nil
}

// SupportedExtensions 返回所有已注册提取器声明的扩展名（保持注册顺序并去重）
func (s *resumeServiceImpl) SupportedExtensions() []string {
	seen := make(map[string]struct{})
	var exts []string
	for _, e := range s.extractors {
		reporter, ok := e.(ExtensionReporter)
		if !ok {
			continue
		}
		for _, ext := range reporter.SupportedExtensions() {
			if _, dup := seen[ext]; dup {
				continue
			}
			seen[ext] = struct{}{}
			exts = append(exts, ext)
		}
	}
	return exts
}

func (s *resumeServiceImpl) selectExtractor(fileName string) DocumentExtractor {
	for _, e := range s.extractors {
		if e.CanHandle(fileName) {
			return e
		}
	}
	return nil
}

// classify 已分类的错误原样透传，其他错误统一转换为未预期错误
func (s *resumeServiceImpl) classify(err error) error {
	switch KindOf(err) {
	case KindUnsupportedFormat, KindExtraction, KindAnalysis, KindUnexpected:
		return err
	}
	s.settings.logError(err, "未分类的内部错误 (%T)", err)
	return NewUnexpectedError(err.Error())
}

func (s *resumeServiceImpl) fail(span trace.Span, err error) error {
	s.transition(span, stateError)

	errType := tracing.ErrorTypeInternal
	switch KindOf(err) {
	case KindUnsupportedFormat:
		errType = tracing.ErrorTypeUnsupportedFormat
	case KindExtraction:
		errType = tracing.ErrorTypeExtraction
	case KindAnalysis:
		errType = tracing.ErrorTypeAnalysis
	}
	tracing.RecordError(span, err, errType)

	if KindOf(err) != KindUnsupportedFormat {
		s.settings.logError(err, "简历处理失败")
	}
	return err
}

func (s *resumeServiceImpl) transition(span trace.Span, state pipelineState) {
	s.settings.logDebug("简历处理状态: %s", state)
	span.AddEvent("state_transition", trace.WithAttributes(attribute.String("state", string(state))))
}
