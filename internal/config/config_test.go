package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"ENVIRONMENT", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_API_KEY", "AZURE_OPENAI_API_VERSION",
	"AZURE_OPENAI_TEMPERATURE", "MAX_FILE_SIZE_MB", "API_KEY", "SERVER_ADDRESS", "REDIS_ADDRESS",
	"REDIS_PASSWORD", "OTEL_EXPORTER_OTLP_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT_GPT_35_TURBO",
	"AZURE_OPENAI_DEPLOYMENT_GPT_4O_MINI_PROD",
}

// clearConfigEnv 清空会影响配置的环境变量，测试结束后自动恢复
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644), "无法写入临时配置文件")
	return configPath
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, config.Environment)
	assert.Equal(t, ":8000", config.Server.Address)
	assert.Equal(t, 10, config.Server.MaxFileSizeMB)
	assert.Equal(t, int64(10*1024*1024), config.MaxFileSizeBytes())
	assert.Equal(t, "2024-12-01-preview", config.AzureOpenAI.APIVersion)
	assert.InDelta(t, 0.1, config.AzureOpenAI.Temperature, 1e-6)
	assert.Equal(t, "eino", config.Extractor.PDFEngine)
	assert.Equal(t, 0, config.Analyzer.MaxRetries, "默认不重试")
	assert.False(t, config.APIKeyEnabled(), "默认 TODO 关闭 API Key 校验")

	d := config.CurrentDeployment()
	assert.Equal(t, "gpt-35-turbo", d.Name)
	assert.Equal(t, "0125", d.ModelVersion)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearConfigEnv(t)

	configPath := writeConfig(t, `
environment: production
server:
  address: ":9000"
  api_key: "secret"
  max_file_size_mb: 5
azure_openai:
  endpoint: "https://example.openai.azure.com"
  api_key: "azure-key"
  temperature: 0.3
analyzer:
  timeout: "30s"
extractor:
  pdf_engine: "ledongthuc"
`)

	config, err := LoadConfig(configPath)
	require.NoError(t, err, "加载配置不应返回错误")

	assert.Equal(t, EnvProduction, config.Environment)
	assert.Equal(t, ":9000", config.Server.Address)
	assert.True(t, config.APIKeyEnabled())
	assert.Equal(t, int64(5*1024*1024), config.MaxFileSizeBytes())
	assert.InDelta(t, 0.3, config.AzureOpenAI.Temperature, 1e-6)
	assert.Equal(t, "ledongthuc", config.Extractor.PDFEngine)
	assert.Equal(t, 30*time.Second, GetDuration(config.Analyzer.Timeout, 0))
	assert.NoError(t, config.ValidateForServer())

	// 文件中未出现的字段保持默认值
	assert.Equal(t, "2024-12-01-preview", config.AzureOpenAI.APIVersion)
	assert.Equal(t, 10, config.Redis.PoolSize)

	d := config.CurrentDeployment()
	assert.Equal(t, "gpt-4o-mini", d.Name)
	assert.Equal(t, "2024-07-18", d.ModelVersion)
}

func TestLoadConfig_SampleFile(t *testing.T) {
	clearConfigEnv(t)

	config, err := LoadConfig("config.yaml")
	require.NoError(t, err, "仓库中的示例配置应该可以加载")
	assert.Equal(t, "gpt-35-turbo", config.CurrentDeployment().Name)
	assert.Equal(t, 300, config.ModelQPMLimits["gpt-35-turbo"])
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ENVIRONMENT", "Staging")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://env.openai.azure.com")
	t.Setenv("AZURE_OPENAI_API_KEY", "env-key")
	t.Setenv("AZURE_OPENAI_TEMPERATURE", "0.7")
	t.Setenv("MAX_FILE_SIZE_MB", "2")
	t.Setenv("API_KEY", "header-key")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT_GPT_35_TURBO", "my-gpt35")

	config, err := LoadConfig(writeConfig(t, "environment: development\n"))
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, config.Environment)
	assert.Equal(t, "https://env.openai.azure.com", config.AzureOpenAI.Endpoint)
	assert.Equal(t, "env-key", config.AzureOpenAI.APIKey)
	assert.InDelta(t, 0.7, config.AzureOpenAI.Temperature, 1e-6)
	assert.Equal(t, 2, config.Server.MaxFileSizeMB)
	assert.Equal(t, "header-key", config.Server.APIKey)
	assert.Equal(t, "localhost:6379", config.Redis.Address)
	assert.True(t, config.Tracing.Enabled)
	assert.Equal(t, "collector:4317", config.Tracing.Endpoint)
	assert.Equal(t, "my-gpt35", config.CurrentDeployment().Name)
	assert.Equal(t, "0125", config.CurrentDeployment().ModelVersion)
}

func TestLoadConfig_Errors(t *testing.T) {
	clearConfigEnv(t)

	t.Run("文件不存在", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorContains(t, err, "配置文件不存在")
	})

	t.Run("YAML语法错误", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "server: [unclosed"))
		assert.ErrorContains(t, err, "解析配置文件失败")
	})

	t.Run("非法环境", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "environment: qa\n"))
		assert.ErrorContains(t, err, "配置校验失败")
	})

	t.Run("非法PDF引擎", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "extractor:\n  pdf_engine: tika\n"))
		assert.ErrorContains(t, err, "配置校验失败")
	})

	t.Run("温度越界", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "azure_openai:\n  temperature: 3.5\n"))
		assert.ErrorContains(t, err, "配置校验失败")
	})

	t.Run("非法数字环境变量", func(t *testing.T) {
		t.Setenv("MAX_FILE_SIZE_MB", "ten")
		_, err := LoadConfig("")
		assert.ErrorContains(t, err, "MAX_FILE_SIZE_MB")
	})
}

func TestValidateForServer(t *testing.T) {
	config := createDefaultConfig()
	assert.EqualError(t, config.ValidateForServer(), "AZURE_OPENAI_ENDPOINT is not set")

	config.AzureOpenAI.Endpoint = "https://example.openai.azure.com"
	assert.EqualError(t, config.ValidateForServer(), "AZURE_OPENAI_API_KEY is not set")
}

func TestAPIKeyEnabled(t *testing.T) {
	config := createDefaultConfig()
	for key, enabled := range map[string]bool{"": false, "TODO": false, "abc": true} {
		config.Server.APIKey = key
		assert.Equal(t, enabled, config.APIKeyEnabled(), "api_key=%q", key)
	}
}

func TestCreateSampleConfig(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "sample.yaml")

	require.NoError(t, CreateSampleConfig(path))
	assert.Error(t, CreateSampleConfig(path), "不应覆盖已存在的文件")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8000", config.Server.Address)
}
