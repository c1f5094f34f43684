package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"WebTool-Platform/internal/llm"
)

const (
	defaultModelName = "claude-3-5-haiku-latest"
	defaultMaxTokens = 1024
)

// Config 描述 Anthropic Messages 接口的连接参数。
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
}

// Client 通过官方 SDK 调用 Anthropic Messages 接口。
type Client struct {
	api       sdk.Client
	model     string
	maxTokens int
}

// NewClient 创建 Anthropic 客户端。重试交由上层决定，这里关闭 SDK 自带的重试。
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("未提供 Anthropic API Key")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModelName
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{api: sdk.NewClient(opts...), model: model, maxTokens: maxTokens}, nil
}

// Complete 发送单轮消息并拼接返回的文本块。
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Input)),
		},
	}
	if strings.TrimSpace(req.Instructions) != "" {
		params.System = []sdk.TextBlockParam{{Text: req.Instructions}}
	}
	if t := req.Sampling.Temperature; t != nil {
		// Anthropic 的 temperature 上限为 1。
		params.Temperature = sdk.Float(min(*t, 1))
	}
	if p := req.Sampling.TopP; p != nil {
		params.TopP = sdk.Float(*p)
	}
	if m := req.Sampling.MaxTokens; m != nil {
		params.MaxTokens = int64(*m)
	}

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("请求 Anthropic 失败: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(sdk.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	content := strings.TrimSpace(b.String())
	if content == "" {
		return nil, errors.New("Anthropic 响应内容为空")
	}

	return &llm.Response{
		Text:  content,
		Usage: llm.CountUsage(int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens), 0),
	}, nil
}
