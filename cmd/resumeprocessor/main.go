package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"resume-analyzer-go/internal/config"
	appCoreLogger "resume-analyzer-go/internal/logger"
)

// 命令行参数定义
var (
	filePath   = pflag.StringP("file", "f", "", "简历文件路径 (必填)")
	command    = pflag.String("cmd", "extract", "执行的命令: extract=仅提取文本, process=提取并调用LLM分析")
	configPath = pflag.StringP("config", "c", "", "配置文件路径，为空时只使用默认值和环境变量")
	maxLen     = pflag.Int("maxlen", 1000, "显示的文本最大长度，设为-1显示全部")
	rawText    = pflag.Bool("raw", false, "process 命令同时输出提取到的原始文本")
	saveFile   = pflag.String("save", "", "保存输出到文件")
	logLevel   = pflag.String("log-level", "warn", "日志级别")
)

func main() {
	pflag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "加载 .env 失败: %v\n", err)
	}

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "错误: 必须提供简历文件路径。使用 --file 参数。")
		pflag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg.Logger.Level = *logLevel
	cfg.Logger.File = ""
	if closer, err := appCoreLogger.Init(cfg.Logger); err == nil {
		defer closer.Close()
	}

	switch *command {
	case "extract":
		err = runExtract(cfg, *filePath)
	case "process":
		err = runProcess(cfg, *filePath, *rawText)
	default:
		fmt.Fprintf(os.Stderr, "错误: 未知命令 '%s'。支持的命令: extract, process\n", *command)
		pflag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// truncate 按 maxLen 截断显示的文本
func truncate(text string, maxLen int) string {
	if maxLen < 0 || len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "...(已截断，使用 --maxlen 参数显示更多)"
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("保存到文件失败: %w", err)
	}
	fmt.Printf("输出已保存到: %s\n", path)
	return nil
}
