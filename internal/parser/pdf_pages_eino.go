package parser

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// PageSource 按页读取PDF文本，返回值与PDF页一一对应（空白页为空字符串）
type PageSource interface {
	ReadPages(ctx context.Context, filePath string) ([]string, error)
}

// EinoPageSource 使用 Eino PDF Parser 按页提取文本
type EinoPageSource struct {
	parser einoParser.Parser
	logger *log.Logger
}

// EinoPageOption Eino页读取器的配置选项
type EinoPageOption func(*EinoPageSource)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(logger *log.Logger) EinoPageOption {
	return func(s *EinoPageSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEinoParser 替换底层解析器，主要用于测试
func WithEinoParser(p einoParser.Parser) EinoPageOption {
	return func(s *EinoPageSource) {
		s.parser = p
	}
}

// NewEinoPageSource 初始化 Eino PDF 页读取器
// 配置为按页分割，每页返回一个 schema.Document
func NewEinoPageSource(ctx context.Context, options ...EinoPageOption) (*EinoPageSource, error) {
	source := &EinoPageSource{
		logger: log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		option(source)
	}

	if source.parser == nil {
		p, err := pdf.NewPDFParser(ctx, &pdf.Config{
			ToPages: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
		}
		source.parser = p
	}

	return source, nil
}

// ReadPages 实现 PageSource 接口
func (s *EinoPageSource) ReadPages(ctx context.Context, filePath string) ([]string, error) {
	startTime := time.Now()

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file %s: %w", filePath, err)
	}
	defer file.Close()

	docs, err := s.parser.Parse(ctx, file,
		einoParser.WithURI(filePath),
		einoParser.WithExtraMeta(map[string]any{
			"source_file_path": filePath,
		}),
	)
	if err != nil {
		s.logger.Printf("Eino PDF解析失败: %v (用时 %.2f秒)", err, time.Since(startTime).Seconds())
		return nil, fmt.Errorf("eino PDF parser failed: %w", err)
	}

	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, doc.Content)
	}

	s.logger.Printf("Eino PDF解析完成: %d 页 (用时 %.2f秒)", len(pages), time.Since(startTime).Seconds())
	return pages, nil
}
