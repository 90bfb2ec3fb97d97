package agent

import (
	"github.com/cloudwego/eino/components/model"
)

// ChatOptions 本包模型实现专用的调用选项
type ChatOptions struct {
	// JSONResponse 要求服务端以 json_object 模式返回，保证输出是合法JSON
	JSONResponse bool
	// User 透传给服务端的终端用户标识，便于审计
	User string
}

// WithJSONResponse 开启结构化JSON输出模式
func WithJSONResponse() model.Option {
	return model.WrapImplSpecificOptFn(func(o *ChatOptions) {
		o.JSONResponse = true
	})
}

// WithUser 设置终端用户标识
func WithUser(user string) model.Option {
	return model.WrapImplSpecificOptFn(func(o *ChatOptions) {
		o.User = user
	})
}

// GetChatOptions 从调用选项中解析出本包专用选项
func GetChatOptions(opts ...model.Option) *ChatOptions {
	return model.GetImplSpecificOptions(&ChatOptions{}, opts...)
}
