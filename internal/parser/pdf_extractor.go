package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"resume-analyzer-go/internal/processor"
)

// PDFExtractor PDF文档提取器
// 先把内容写入临时文件，再按页读取文本，拼接所有非空页
type PDFExtractor struct {
	extensionMatcher
	pages   PageSource
	tempDir string // 为空时使用 os.TempDir()
	logger  *log.Logger
}

// PDFExtractorOption PDF提取器的配置选项
type PDFExtractorOption func(*PDFExtractor)

// WithPDFLogger 配置自定义日志记录器
func WithPDFLogger(logger *log.Logger) PDFExtractorOption {
	return func(e *PDFExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTempDir 指定临时文件目录
func WithTempDir(dir string) PDFExtractorOption {
	return func(e *PDFExtractor) {
		e.tempDir = dir
	}
}

// NewPDFExtractor 创建PDF提取器，pages 决定实际使用的PDF解析引擎
func NewPDFExtractor(pages PageSource, options ...PDFExtractorOption) *PDFExtractor {
	e := &PDFExtractor{
		extensionMatcher: newExtensionMatcher("pdf"),
		pages:            pages,
		logger:           log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// ExtractText 实现 processor.DocumentExtractor 接口
func (e *PDFExtractor) ExtractText(ctx context.Context, content []byte, fileName string) (string, error) {
	startTime := time.Now()
	e.logger.Printf("开始处理PDF文件: %s (%.2f KB)", fileName, float64(len(content))/1024)

	if e.pages == nil {
		return "", processor.NewExtractionError(fileName, "Failed to extract text from PDF: no PDF engine configured")
	}
	if err := ctx.Err(); err != nil {
		return "", processor.NewExtractionError(fileName, fmt.Sprintf("Failed to extract text from PDF: %v", err))
	}

	tmpPath, err := e.stageTempFile(content)
	if tmpPath != "" {
		defer e.removeTempFile(tmpPath)
	}
	if err != nil {
		e.logger.Printf("写入临时文件失败: %v", err)
		return "", processor.NewExtractionError(fileName, fmt.Sprintf("Failed to extract text from PDF: %v", err))
	}

	pages, err := e.pages.ReadPages(ctx, tmpPath)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		e.logger.Printf("PDF处理失败: %v (用时 %.2f秒)", err, time.Since(startTime).Seconds())
		return "", processor.NewExtractionError(fileName, fmt.Sprintf("Failed to extract text from PDF: %v", err))
	}

	text := joinPages(pages)
	if strings.TrimSpace(text) == "" {
		e.logger.Printf("PDF中没有可提取的文本: %s", fileName)
		return "", processor.NewExtractionError(fileName, fmt.Sprintf("Could not extract text from PDF: %s", fileName))
	}

	e.logger.Printf("PDF处理完成: %d 页, 提取了 %d 个字符 (用时 %.2f秒)", len(pages), len(text), time.Since(startTime).Seconds())
	return text, nil
}

// stageTempFile 将内容写入临时文件并关闭句柄
// 只要临时文件被创建，就会返回其路径，以便调用方清理
func (e *PDFExtractor) stageTempFile(content []byte) (string, error) {
	tmp, err := os.CreateTemp(e.tempDir, "resume-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return path, fmt.Errorf("writing temp PDF: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return path, fmt.Errorf("closing temp PDF: %w", err)
	}
	return path, nil
}

func (e *PDFExtractor) removeTempFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.logger.Printf("[WARN] 删除临时文件失败 %s: %v", path, err)
	}
}

// joinPages 拼接非空页，每页后追加一个换行
func joinPages(pages []string) string {
	var sb strings.Builder
	for _, page := range pages {
		if page == "" {
			continue
		}
		sb.WriteString(page)
		sb.WriteByte('\n')
	}
	return sb.String()
}
