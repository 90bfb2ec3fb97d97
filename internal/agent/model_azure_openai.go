package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultAzureAPIVersion Azure OpenAI 默认API版本
const DefaultAzureAPIVersion = "2024-12-01-preview"

// AzureOpenAIConfig Azure OpenAI 客户端配置
type AzureOpenAIConfig struct {
	Endpoint    string        // 例如 https://my-resource.openai.azure.com
	APIKey      string        // api-key 请求头
	APIVersion  string        // 为空时使用 DefaultAzureAPIVersion
	Deployment  string        // 默认部署名，可被 model.WithModel 覆盖
	Temperature float32       // 默认温度，可被 model.WithTemperature 覆盖
	MaxTokens   int           // 0 表示不限制
	Timeout     time.Duration // 单次HTTP请求超时，0 表示不设超时
}

// AzureOpenAIChatModel 基于 go-openai 的 Azure OpenAI 聊天模型
// 实现 eino 的 model.ToolCallingChatModel 接口，客户端本身可并发复用
type AzureOpenAIChatModel struct {
	client *openai.Client
	config AzureOpenAIConfig
	tools  []*schema.ToolInfo
	logger *log.Logger
}

// AzureOption Azure模型的配置选项
type AzureOption func(*azureModelOptions)

type azureModelOptions struct {
	logger *log.Logger
}

// WithAzureLogger 配置自定义日志记录器
func WithAzureLogger(logger *log.Logger) AzureOption {
	return func(o *azureModelOptions) {
		o.logger = logger
	}
}

// NewAzureOpenAIChatModel 创建 Azure OpenAI 聊天模型
func NewAzureOpenAIChatModel(cfg AzureOpenAIConfig, opts ...AzureOption) (*AzureOpenAIChatModel, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("AZURE_OPENAI_ENDPOINT is not set")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("AZURE_OPENAI_API_KEY is not set")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAzureAPIVersion
	}

	o := &azureModelOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}

	clientConfig := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	clientConfig.APIVersion = cfg.APIVersion
	// 模型名即部署名，不做任何改写
	clientConfig.AzureModelMapperFunc = func(model string) string { return model }
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &AzureOpenAIChatModel{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: o.logger,
	}, nil
}

// Generate 发送一次聊天补全请求，返回助手消息
func (m *AzureOpenAIChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	req, err := m.buildRequest(input, opts...)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		m.logger.Printf("Azure OpenAI 调用失败 (部署=%s, 用时 %.2f秒): %v", req.Model, time.Since(startTime).Seconds(), err)
		return nil, fmt.Errorf("azure openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("azure openai returned no choices")
	}

	choice := resp.Choices[0]
	m.logger.Printf("Azure OpenAI 调用完成 (部署=%s, tokens=%d, finish=%s, 用时 %.2f秒)",
		req.Model, resp.Usage.TotalTokens, choice.FinishReason, time.Since(startTime).Seconds())

	msg := schema.AssistantMessage(choice.Message.Content, nil)
	msg.ResponseMeta = &schema.ResponseMeta{
		FinishReason: string(choice.FinishReason),
		Usage: &schema.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	return msg, nil
}

// Stream 以单个分片的流返回 Generate 的结果
func (m *AzureOpenAIChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// WithTools 返回携带工具定义的新实例
// 简历分析只使用JSON模式，不支持函数调用
func (m *AzureOpenAIChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	if len(tools) > 0 {
		return nil, errors.New("azure openai chat model: tool calling is not supported")
	}
	clone := *m
	clone.tools = nil
	return &clone, nil
}

func (m *AzureOpenAIChatModel) buildRequest(input []*schema.Message, opts ...model.Option) (openai.ChatCompletionRequest, error) {
	deployment := m.config.Deployment
	temperature := m.config.Temperature
	maxTokens := m.config.MaxTokens
	common := model.GetCommonOptions(&model.Options{
		Model:       &deployment,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}, opts...)
	chatOpts := GetChatOptions(opts...)

	req := openai.ChatCompletionRequest{
		Messages: make([]openai.ChatCompletionMessage, 0, len(input)),
		User:     chatOpts.User,
	}
	if common.Model != nil {
		req.Model = *common.Model
	}
	if req.Model == "" {
		return req, errors.New("azure openai chat model: deployment is not set")
	}
	if common.Temperature != nil {
		req.Temperature = *common.Temperature
		// go-openai 序列化时会省略零值，显式的0用最小正数代替
		if req.Temperature == 0 {
			req.Temperature = math.SmallestNonzeroFloat32
		}
	}
	if common.MaxTokens != nil && *common.MaxTokens > 0 {
		req.MaxTokens = *common.MaxTokens
	}
	if chatOpts.JSONResponse {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	for i, msg := range input {
		if msg == nil {
			return req, fmt.Errorf("azure openai chat model: message %d is nil", i)
		}
		role, err := toOpenAIRole(msg.Role)
		if err != nil {
			return req, err
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return req, nil
}

func toOpenAIRole(role schema.RoleType) (string, error) {
	switch role {
	case schema.System:
		return openai.ChatMessageRoleSystem, nil
	case schema.User:
		return openai.ChatMessageRoleUser, nil
	case schema.Assistant:
		return openai.ChatMessageRoleAssistant, nil
	case schema.Tool:
		return openai.ChatMessageRoleTool, nil
	default:
		return "", fmt.Errorf("azure openai chat model: unsupported role %q", role)
	}
}
