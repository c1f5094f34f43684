package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"WebTool-Platform/internal/llm"
)

const (
	// DefaultBaseURL 指向 Gemini 提供的 OpenAI 兼容端点。
	DefaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta/openai/"
	defaultModelName = "gemini-2.5-flash"
	defaultTimeout   = 60 * time.Second
)

// Config 描述了调用 OpenAI 兼容 Chat Completions 接口所需的信息。
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client 通过 go-openai 调用任意 OpenAI 兼容的模型服务。
type Client struct {
	api   *goopenai.Client
	model string
}

// NewClient 根据配置创建客户端。
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("未提供 OpenAI 兼容接口的 API Key")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	// go-openai 直接拼接路径，末尾的 / 会产生双斜杠。
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModelName
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	clientCfg := goopenai.DefaultConfig(apiKey)
	clientCfg.BaseURL = baseURL
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	} else {
		clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &Client{api: goopenai.NewClientWithConfig(clientCfg), model: model}, nil
}

// Model 返回实际使用的模型名称。
func (c *Client) Model() string { return c.model }

// Complete 调用 Chat Completions 接口生成文本。
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(req.Instructions) != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.Instructions,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.Input,
	})

	chatReq := goopenai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if t := req.Sampling.Temperature; t != nil {
		chatReq.Temperature = nonZero(*t)
	}
	if p := req.Sampling.TopP; p != nil {
		chatReq.TopP = nonZero(*p)
	}
	if m := req.Sampling.MaxTokens; m != nil {
		chatReq.MaxTokens = *m
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("请求 OpenAI 兼容接口失败: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("响应中没有有效的 choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, errors.New("响应内容为空")
	}

	return &llm.Response{
		Text:  content,
		Usage: llm.CountUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens),
	}, nil
}

// nonZero 处理 go-openai 对 0 值的 omitempty：0 会被省略从而退回服务端默认值。
func nonZero(v float64) float32 {
	if v == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(v)
}
