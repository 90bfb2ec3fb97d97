package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resume-analyzer-go/internal/bootstrap"
	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/processor"
)

// extractText 读取文件并用第一个可处理它的提取器提取文本
func extractText(ctx context.Context, cfg *config.Config, path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("无法获取文件的绝对路径: %w", err)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("无法读取文件 %s: %w", absPath, err)
	}

	extractors, err := bootstrap.NewExtractors(ctx, cfg)
	if err != nil {
		return "", err
	}
	fileName := filepath.Base(absPath)
	for _, e := range extractors {
		if e.CanHandle(fileName) {
			return e.ExtractText(ctx, content, fileName)
		}
	}
	return "", processor.NewUnsupportedFormatError(fileName)
}

// runExtract 只提取文本，不需要模型配置
func runExtract(cfg *config.Config, path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("准备处理文件: %s (PDF引擎: %s)\n", path, cfg.Extractor.PDFEngine)
	startTime := time.Now()

	text, err := extractText(ctx, cfg, path)
	if err != nil {
		return err
	}

	fmt.Printf("提取完成! 耗时: %v\n", time.Since(startTime))
	fmt.Printf("\n===== 提取的文本 (总计 %d 字符) =====\n", len(text))
	fmt.Println(truncate(text, *maxLen))

	return writeOutput(*saveFile, []byte(text))
}
