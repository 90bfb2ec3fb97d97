package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resume-analyzer-go/internal/bootstrap"
	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/processor"
	"resume-analyzer-go/internal/types"
)

// processOutput 与 HTTP 接口的响应结构一致，raw_text 只在 --raw 时输出
type processOutput struct {
	ExtractedData *types.Resume `json:"extracted_data"`
	RawText       string        `json:"raw_text,omitempty"`
}

// runProcess 执行完整流程：提取 -> LLM分析 -> 输出JSON
func runProcess(cfg *config.Config, path string, includeRaw bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	chatModel, err := bootstrap.NewChatModel(cfg)
	if err != nil {
		return fmt.Errorf("初始化模型失败: %w", err)
	}
	service, err := bootstrap.NewResumeService(ctx, cfg, chatModel)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("无法读取文件 %s: %w", path, err)
	}

	fmt.Fprintf(os.Stderr, "使用部署 %s 分析简历...\n", cfg.CurrentDeployment().Name)
	startTime := time.Now()
	resume, err := service.Process(ctx, content, filepath.Base(path), processor.AnalyzeOptions{IncludeRawText: includeRaw})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "分析完成! 耗时: %v\n", time.Since(startTime))

	out := processOutput{ExtractedData: resume}
	if includeRaw {
		// 服务只返回结构化结果，原文单独再提取一次
		if out.RawText, err = extractText(ctx, cfg, path); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化结果失败: %w", err)
	}
	fmt.Println(string(data))
	return writeOutput(*saveFile, data)
}
