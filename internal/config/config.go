package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"resume-analyzer-go/internal/logger"
	"resume-analyzer-go/internal/tracing"
)

// 运行环境
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// DisabledAPIKey 配置为该值（或为空）时不校验 X-API-Key
const DisabledAPIKey = "TODO"

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "internal/config/config.yaml"

// RedisConfig holds configuration for Redis
// Address 为空表示不使用Redis（不做上传限流，就绪检查跳过Redis）
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`      // 连接池大小
	MinIdleConns int `yaml:"min_idle_conns"` // 最小空闲连接数
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`  // 连接超时(秒)
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`  // 读取超时(秒)
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"` // 写入超时(秒)
	// 重试设置
	MaxRetries        int `yaml:"max_retries"`          // 最大重试次数
	MinRetryBackoffMS int `yaml:"min_retry_backoff_ms"` // 最小重试间隔(毫秒)
	MaxRetryBackoffMS int `yaml:"max_retry_backoff_ms"` // 最大重试间隔(毫秒)
	// 连接生命周期
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`  // 连接最大生命周期(分钟)
	ConnMaxIdleTimeMinutes int `yaml:"conn_max_idle_time_minutes"` // 空闲连接最大生命周期(分钟)
}

// Config 应用程序配置
type Config struct {
	// 运行环境，决定使用哪个模型部署
	Environment string `yaml:"environment" validate:"oneof=development staging production"`

	Server      ServerConfig      `yaml:"server"`
	AzureOpenAI AzureOpenAIConfig `yaml:"azure_openai"`
	Analyzer    AnalyzerConfig    `yaml:"analyzer"`
	Extractor   ExtractorConfig   `yaml:"extractor"`
	Redis       RedisConfig       `yaml:"redis"`
	Tracing     tracing.Config    `yaml:"tracing"`
	Logger      logger.Config     `yaml:"logger"`

	// 每个部署的QPM配额
	ModelQPMLimits map[string]int `yaml:"model_qpm_limits"`
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address       string `yaml:"address" validate:"required"` // 例如 ":8000" or "0.0.0.0:8000"
	ServiceName   string `yaml:"service_name"`
	Version       string `yaml:"version"`
	APIKey        string `yaml:"api_key"`
	MaxFileSizeMB int    `yaml:"max_file_size_mb" validate:"gt=0"`
	// 每个客户端每分钟允许的上传次数，需要配置Redis
	UploadsPerMinute int `yaml:"uploads_per_minute" validate:"gte=0"`
}

// DeploymentConfig Azure OpenAI 部署
type DeploymentConfig struct {
	Name         string `yaml:"name" validate:"required"`
	ModelVersion string `yaml:"model_version"`
}

// AzureOpenAIConfig Azure OpenAI 配置
type AzureOpenAIConfig struct {
	Endpoint       string  `yaml:"endpoint" validate:"omitempty,url"`
	APIKey         string  `yaml:"api_key"`
	APIVersion     string  `yaml:"api_version" validate:"required"`
	Temperature    float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens      int     `yaml:"max_tokens" validate:"gte=0"`
	RequestTimeout string  `yaml:"request_timeout"` // HTTP请求超时，例如 "60s"，为空不设超时
	// 按运行环境选择部署
	Deployments map[string]DeploymentConfig `yaml:"deployments" validate:"dive"`
}

// AnalyzerConfig 简历分析器配置
type AnalyzerConfig struct {
	Timeout          string `yaml:"timeout"` // 单次分析超时，例如 "45s"，为空表示不限制
	QPM              int    `yaml:"qpm" validate:"gte=0"`
	MaxRetries       int    `yaml:"max_retries" validate:"gte=0"` // 0 表示只调用一次
	RetryWaitSeconds int    `yaml:"retry_wait_seconds" validate:"gte=0"`
}

// ExtractorConfig 文档提取配置
type ExtractorConfig struct {
	PDFEngine string `yaml:"pdf_engine" validate:"oneof=eino ledongthuc"`
	TempDir   string `yaml:"temp_dir"`
}

// LoadConfig 从文件加载配置，文件中未设置的字段使用默认值，最后应用环境变量
// configPath 为空时只使用默认值和环境变量
func LoadConfig(configPath string) (*Config, error) {
	config := createDefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("配置文件不存在: %s", configPath)
			}
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if err := config.applyEnvOverrides(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides 从环境变量覆盖配置（如果存在）
func (c *Config) applyEnvOverrides() error {
	setString := func(env string, target *string) {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*target = v
		}
	}

	setString("ENVIRONMENT", &c.Environment)
	setString("AZURE_OPENAI_ENDPOINT", &c.AzureOpenAI.Endpoint)
	setString("AZURE_OPENAI_API_KEY", &c.AzureOpenAI.APIKey)
	setString("AZURE_OPENAI_API_VERSION", &c.AzureOpenAI.APIVersion)
	setString("API_KEY", &c.Server.APIKey)
	setString("SERVER_ADDRESS", &c.Server.Address)
	setString("REDIS_ADDRESS", &c.Redis.Address)
	setString("REDIS_PASSWORD", &c.Redis.Password)

	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Tracing.Endpoint = v
		c.Tracing.Enabled = true
	}

	if v := os.Getenv("AZURE_OPENAI_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("invalid AZURE_OPENAI_TEMPERATURE %q: %w", v, err)
		}
		c.AzureOpenAI.Temperature = float32(t)
	}
	if v := os.Getenv("MAX_FILE_SIZE_MB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_FILE_SIZE_MB %q: %w", v, err)
		}
		c.Server.MaxFileSizeMB = n
	}

	// 覆盖各环境的部署名
	if v := os.Getenv("AZURE_OPENAI_DEPLOYMENT_GPT_35_TURBO"); v != "" {
		c.setDeploymentName(v, EnvDevelopment, EnvStaging)
	}
	if v := os.Getenv("AZURE_OPENAI_DEPLOYMENT_GPT_4O_MINI_PROD"); v != "" {
		c.setDeploymentName(v, EnvProduction)
	}
	return nil
}

func (c *Config) setDeploymentName(name string, envs ...string) {
	if c.AzureOpenAI.Deployments == nil {
		c.AzureOpenAI.Deployments = make(map[string]DeploymentConfig)
	}
	for _, env := range envs {
		d := c.AzureOpenAI.Deployments[env]
		d.Name = name
		c.AzureOpenAI.Deployments[env] = d
	}
}

// applyDefaults 补齐YAML中被显式置空的字段
func (c *Config) applyDefaults() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8000"
	}
	if c.Server.MaxFileSizeMB == 0 {
		c.Server.MaxFileSizeMB = 10
	}
	if c.AzureOpenAI.APIVersion == "" {
		c.AzureOpenAI.APIVersion = "2024-12-01-preview"
	}
	if c.Extractor.PDFEngine == "" {
		c.Extractor.PDFEngine = "eino"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Server.ServiceName
	}
	for env, d := range defaultDeployments() {
		if existing, ok := c.AzureOpenAI.Deployments[env]; !ok || existing.Name == "" {
			if c.AzureOpenAI.Deployments == nil {
				c.AzureOpenAI.Deployments = make(map[string]DeploymentConfig)
			}
			c.AzureOpenAI.Deployments[env] = d
		}
	}
}

var validate = validator.New()

// Validate 校验配置的取值范围
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	return nil
}

// ValidateForServer 启动HTTP服务或调用模型前的额外校验
func (c *Config) ValidateForServer() error {
	if c.AzureOpenAI.Endpoint == "" {
		return errors.New("AZURE_OPENAI_ENDPOINT is not set")
	}
	if c.AzureOpenAI.APIKey == "" {
		return errors.New("AZURE_OPENAI_API_KEY is not set")
	}
	return nil
}

// CurrentDeployment 根据运行环境返回模型部署
// production 使用生产部署，其余环境使用开发部署
func (c *Config) CurrentDeployment() DeploymentConfig {
	if d, ok := c.AzureOpenAI.Deployments[c.Environment]; ok && d.Name != "" {
		return d
	}
	if c.Environment == EnvProduction {
		return defaultDeployments()[EnvProduction]
	}
	return defaultDeployments()[EnvDevelopment]
}

// MaxFileSizeBytes 上传文件大小上限（字节）
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Server.MaxFileSizeMB) * 1024 * 1024
}

// APIKeyEnabled 是否需要校验 X-API-Key
func (c *Config) APIKeyEnabled() bool {
	return c.Server.APIKey != "" && c.Server.APIKey != DisabledAPIKey
}

func defaultDeployments() map[string]DeploymentConfig {
	dev := DeploymentConfig{Name: "gpt-35-turbo", ModelVersion: "0125"}
	return map[string]DeploymentConfig{
		EnvDevelopment: dev,
		EnvStaging:     dev,
		EnvProduction:  {Name: "gpt-4o-mini", ModelVersion: "2024-07-18"},
	}
}

// 创建一个默认配置
func createDefaultConfig() *Config {
	config := &Config{
		Environment: EnvDevelopment,
	}

	config.Server.Address = ":8000"
	config.Server.ServiceName = "Resume Analyzer"
	config.Server.Version = "1.0.0"
	config.Server.APIKey = DisabledAPIKey
	config.Server.MaxFileSizeMB = 10
	config.Server.UploadsPerMinute = 10

	config.AzureOpenAI.APIVersion = "2024-12-01-preview"
	config.AzureOpenAI.Temperature = 0.1
	config.AzureOpenAI.Deployments = defaultDeployments()

	config.Analyzer.QPM = 60
	config.Analyzer.MaxRetries = 0
	config.Analyzer.RetryWaitSeconds = 1

	config.Extractor.PDFEngine = "eino"

	// Redis连接池默认配置，Address 为空时不启用
	config.Redis.PoolSize = 10
	config.Redis.MinIdleConns = 2
	config.Redis.DialTimeoutSeconds = 5
	config.Redis.ReadTimeoutSeconds = 3
	config.Redis.WriteTimeoutSeconds = 3
	config.Redis.MaxRetries = 3
	config.Redis.MinRetryBackoffMS = 8
	config.Redis.MaxRetryBackoffMS = 512
	config.Redis.ConnMaxLifetimeMinutes = 60
	config.Redis.ConnMaxIdleTimeMinutes = 30

	config.Tracing.Insecure = true
	config.Tracing.SampleRatio = 1
	config.Tracing.ServiceName = "resume-analyzer"

	// 日志默认配置
	config.Logger.Level = "info"
	config.Logger.Format = "pretty"
	config.Logger.TimeFormat = "2006-01-02 15:04:05"
	config.Logger.ReportCaller = true

	config.ModelQPMLimits = map[string]int{
		"gpt-35-turbo": 300,
		"gpt-4o-mini":  500,
	}

	return config
}

// CreateSampleConfig 创建一个示例配置文件
func CreateSampleConfig(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("文件 '%s' 已存在，不会覆盖", filePath)
	}

	data, err := yaml.Marshal(createDefaultConfig())
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入示例配置文件 '%s' 失败: %w", filePath, err)
	}
	return nil
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
