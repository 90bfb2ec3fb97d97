package parser

import (
	"context"
	"fmt"

	ledongthuc "github.com/ledongthuc/pdf"
)

// LedongthucPageSource 使用 github.com/ledongthuc/pdf 按页提取文本
// 该库只接受文件路径，因此依赖 PDFExtractor 先把内容落盘到临时文件
type LedongthucPageSource struct{}

// NewLedongthucPageSource 创建 ledongthuc 页读取器
func NewLedongthucPageSource() *LedongthucPageSource {
	return &LedongthucPageSource{}
}

// ReadPages 实现 PageSource 接口
func (s *LedongthucPageSource) ReadPages(ctx context.Context, filePath string) (pages []string, err error) {
	// 该库在遇到损坏的PDF时可能panic
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, reader, err := ledongthuc.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", filePath, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting text from page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}
