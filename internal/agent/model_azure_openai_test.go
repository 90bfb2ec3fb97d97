package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path       string
	APIVersion string
	APIKey     string
	Body       map[string]any
}

func newAzureTestServer(t *testing.T, status int, respBody string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		captured.APIVersion = r.URL.Query().Get("api-version")
		captured.APIKey = r.Header.Get("api-key")
		_ = json.NewDecoder(r.Body).Decode(&captured.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

const chatCompletionOK = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"first_name\":\"John\"}"}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
}`

func TestNewAzureOpenAIChatModel_Validation(t *testing.T) {
	_, err := NewAzureOpenAIChatModel(AzureOpenAIConfig{APIKey: "k"})
	assert.EqualError(t, err, "AZURE_OPENAI_ENDPOINT is not set")

	_, err = NewAzureOpenAIChatModel(AzureOpenAIConfig{Endpoint: "https://example.openai.azure.com"})
	assert.EqualError(t, err, "AZURE_OPENAI_API_KEY is not set")

	m, err := NewAzureOpenAIChatModel(AzureOpenAIConfig{Endpoint: "https://example.openai.azure.com", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultAzureAPIVersion, m.config.APIVersion)
}

func TestAzureOpenAIChatModel_Generate(t *testing.T) {
	srv, captured := newAzureTestServer(t, http.StatusOK, chatCompletionOK)

	m, err := NewAzureOpenAIChatModel(AzureOpenAIConfig{
		Endpoint:    srv.URL,
		APIKey:      "secret-key",
		Deployment:  "gpt-35-turbo",
		Temperature: 0.1,
	})
	require.NoError(t, err)

	msg, err := m.Generate(context.Background(),
		[]*schema.Message{schema.SystemMessage("sys"), schema.UserMessage("user")},
		model.WithModel("gpt-4o-mini"),
		model.WithTemperature(0.3),
		WithJSONResponse(),
	)
	require.NoError(t, err)

	assert.Equal(t, `{"first_name":"John"}`, msg.Content)
	assert.Equal(t, schema.Assistant, msg.Role)
	require.NotNil(t, msg.ResponseMeta)
	assert.Equal(t, "stop", msg.ResponseMeta.FinishReason)
	assert.Equal(t, 150, msg.ResponseMeta.Usage.TotalTokens)

	// 部署名覆盖默认值，出现在URL路径中
	assert.Equal(t, "/openai/deployments/gpt-4o-mini/chat/completions", captured.Path)
	assert.Equal(t, DefaultAzureAPIVersion, captured.APIVersion)
	assert.Equal(t, "secret-key", captured.APIKey)

	assert.InDelta(t, 0.3, captured.Body["temperature"], 1e-6)
	assert.Equal(t, map[string]any{"type": "json_object"}, captured.Body["response_format"])
	messages, ok := captured.Body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["content"])
}

func TestAzureOpenAIChatModel_ZeroTemperatureIsSent(t *testing.T) {
	srv, captured := newAzureTestServer(t, http.StatusOK, chatCompletionOK)

	m, err := NewAzureOpenAIChatModel(AzureOpenAIConfig{Endpoint: srv.URL, APIKey: "k", Deployment: "d", Temperature: 0.5})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")}, model.WithTemperature(0))
	require.NoError(t, err)

	temperature, ok := captured.Body["temperature"]
	require.True(t, ok, "温度为0时也必须发送 temperature 字段")
	assert.InDelta(t, 0, temperature, 1e-6)

	// 配置中的0同样生效
	captured.Body = nil
	m, err = NewAzureOpenAIChatModel(AzureOpenAIConfig{Endpoint: srv.URL, APIKey: "k", Deployment: "d"})
	require.NoError(t, err)
	_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	assert.Contains(t, captured.Body, "temperature")
}

func TestAzureOpenAIChatModel_DefaultDeployment(t *testing.T) {
	srv, captured := newAzureTestServer(t, http.StatusOK, chatCompletionOK)

	m, err := NewAzureOpenAIChatModel(AzureOpenAIConfig{Endpoint: srv.URL, APIKey: "k", Deployment: "gpt-35-turbo"})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "/openai/deployments/gpt-35-turbo/chat/completions", captured.Path)
	_, hasFormat := captured.Body["response_format"]
	assert.False(t, hasFormat, "未开启JSON模式时不应发送 response_format")
}

func TestAzureOpenAIChatModel_APIError(t *testing.T) {
	srv, _ := newAzureTestServer(t, http.StatusTooManyRequests,
		`{"error":{"code":"429","message":"Rate limit exceeded","type":"rate_limit"}}`)

	m, err := NewAzureOpenAIChatModel(AzureOpenAIConfig{Endpoint: srv.URL, APIKey: "k", Deployment: "d"})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.Error(t, err)

	var apiErr *openai.APIError
	require.True(t, errors.As(err, &apiErr), "应该可以解析出APIError: %v", err)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.HTTPStatusCode)
}

func TestAzureOpenAIChatModel_NoChoices(t *testing.T) {
	srv, _ := newAzureTestServer(t, http.StatusOK, `{"id":"x","choices":[],"usage":{}}`)

	m, err := NewAzureOpenAIChatModel(AzureOpenAIConfig{Endpoint: srv.URL, APIKey: "k", Deployment: "d"})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	assert.EqualError(t, err, "azure openai returned no choices")
}

func TestAzureOpenAIChatModel_BuildRequestErrors(t *testing.T) {
	m, err := NewAzureOpenAIChatModel(AzureOpenAIConfig{Endpoint: "http://127.0.0.1:0", APIKey: "k"})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	assert.ErrorContains(t, err, "deployment is not set")

	_, err = m.Generate(context.Background(), []*schema.Message{nil}, model.WithModel("d"))
	assert.ErrorContains(t, err, "message 0 is nil")
}

func TestAzureOpenAIChatModel_WithTools(t *testing.T) {
	m, err := NewAzureOpenAIChatModel(AzureOpenAIConfig{Endpoint: "http://localhost", APIKey: "k"})
	require.NoError(t, err)

	same, err := m.WithTools(nil)
	require.NoError(t, err)
	assert.NotNil(t, same)

	_, err = m.WithTools([]*schema.ToolInfo{{Name: "weather"}})
	assert.Error(t, err)
}

func TestMockChatClient_Sequential(t *testing.T) {
	mock := NewMockChatClientSequential([]MockResponse{
		{Content: "first"},
		{Error: errors.New("boom")},
	})

	msg, err := mock.Generate(context.Background(), []*schema.Message{schema.UserMessage("a")}, WithJSONResponse())
	require.NoError(t, err)
	assert.Equal(t, "first", msg.Content)

	_, err = mock.Generate(context.Background(), nil)
	assert.EqualError(t, err, "boom")

	_, err = mock.Generate(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, 3, mock.CallCount())

	first := mock.Calls[0]
	assert.True(t, first.Chat.JSONResponse)
	assert.False(t, mock.Calls[1].Chat.JSONResponse)
}

func TestGetChatOptions(t *testing.T) {
	opts := GetChatOptions(WithJSONResponse(), WithUser("req-1"), model.WithTemperature(0.5))
	assert.True(t, opts.JSONResponse)
	assert.Equal(t, "req-1", opts.User)

	assert.False(t, GetChatOptions().JSONResponse)
}
