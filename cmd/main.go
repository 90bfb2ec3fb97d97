package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"resume-analyzer-go/internal/api/handler"
	"resume-analyzer-go/internal/api/middleware"
	"resume-analyzer-go/internal/api/router"
	"resume-analyzer-go/internal/bootstrap"
	"resume-analyzer-go/internal/config"
	appCoreLogger "resume-analyzer-go/internal/logger"
	"resume-analyzer-go/internal/ratelimit"
	"resume-analyzer-go/internal/storage"
	"resume-analyzer-go/internal/tracing"
)

func main() {
	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		glog.Warnf("加载 .env 失败: %v", err)
	}

	var configPath string
	pflag.StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}

	logCloser, err := appCoreLogger.Init(cfg.Logger)
	if err != nil {
		glog.Fatalf("初始化日志失败: %v", err)
	}
	defer logCloser.Close()
	glog.Infof("配置加载成功, 环境: %s, 部署: %s", cfg.Environment, cfg.CurrentDeployment().Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.Server.Version)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}

	// 未配置模型时服务仍然启动，就绪检查返回 not_ready
	var chatModel model.BaseChatModel
	if m, err := bootstrap.NewChatModel(cfg); err != nil {
		glog.Warnf("LLM模型未配置, 简历分析不可用: %v", err)
	} else {
		chatModel = m
		glog.Infof("Azure OpenAI 模型初始化成功, 部署: %s", cfg.CurrentDeployment().Name)
	}

	resumeService, err := bootstrap.NewResumeService(ctx, cfg, chatModel)
	if err != nil {
		glog.Fatalf("初始化简历处理服务失败: %v", err)
	}
	glog.Infof("简历处理服务初始化成功, PDF引擎: %s", cfg.Extractor.PDFEngine)

	var (
		readinessChecks []handler.ReadinessCheck
		uploadLimiter   middleware.UploadLimiter
		redisAdapter    *storage.Redis
	)
	if cfg.Redis.Address != "" {
		redisAdapter, err = storage.NewRedisAdapter(ctx, &cfg.Redis)
		if err != nil {
			glog.Fatalf("连接Redis失败: %v", err)
		}
		defer redisAdapter.Close()
		readinessChecks = append(readinessChecks, redisAdapter)
		uploadLimiter = ratelimit.NewUploadLimiter(redisAdapter.Client, cfg.Server.UploadsPerMinute, time.Minute)
		glog.Infof("Redis连接成功, 上传限流: %d 次/分钟", cfg.Server.UploadsPerMinute)
	} else {
		glog.Info("未配置Redis, 不启用上传限流")
	}

	if !cfg.APIKeyEnabled() {
		glog.Warn("未配置API密钥, /api/extract/ 不做鉴权")
	}

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		// 留出 multipart 编码的余量，超限由处理器返回 400
		server.WithMaxRequestBodySize(int(cfg.MaxFileSizeBytes())+4*1024*1024),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	resumeHandler := handler.NewResumeHandler(resumeService, cfg.Server.MaxFileSizeMB)
	healthHandler := handler.NewHealthHandler(handler.ServiceInfo{
		Name:        cfg.Server.ServiceName,
		Version:     cfg.Server.Version,
		Environment: cfg.Environment,
	}, chatModel != nil, readinessChecks...)

	router.RegisterRoutes(h, resumeHandler, healthHandler, router.Options{
		APIKey:        cfg.Server.APIKey,
		APIKeyEnabled: cfg.APIKeyEnabled(),
		UploadLimiter: uploadLimiter,
	})
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Errorf("关闭链路追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}
