package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"WebTool-Platform/internal/llm"
)

const (
	defaultHost    = "http://localhost:11434"
	defaultModel   = "llama3.2"
	defaultTimeout = 120 * time.Second
)

// Config 描述本地 Ollama 服务的连接参数。
type Config struct {
	Host       string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client 通过 Ollama 的 /api/chat 接口生成文本。
type Client struct {
	api   *api.Client
	model string
}

// NewClient 创建 Ollama 客户端。
func NewClient(cfg Config) (*Client, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = defaultHost
	}
	u, err := url.Parse(host)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("无效的 Ollama 地址 %q", host)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{api: api.NewClient(u, httpClient), model: model}, nil
}

// Complete 以非流式方式请求对话补全。
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	messages := make([]api.Message, 0, 2)
	if strings.TrimSpace(req.Instructions) != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.Instructions})
	}
	messages = append(messages, api.Message{Role: "user", Content: req.Input})

	stream := false
	chatReq := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Options:  options(req.Sampling),
	}

	var (
		text strings.Builder
		last api.ChatResponse
	)
	err := c.api.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		last = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("请求 Ollama 失败: %w", err)
	}

	content := strings.TrimSpace(text.String())
	if content == "" {
		return nil, errors.New("Ollama 响应内容为空")
	}
	return &llm.Response{
		Text:  content,
		Usage: llm.CountUsage(last.PromptEvalCount, last.EvalCount, 0),
	}, nil
}

func options(s llm.Sampling) map[string]any {
	if s.IsZero() {
		return nil
	}
	opts := make(map[string]any, 3)
	if s.Temperature != nil {
		opts["temperature"] = *s.Temperature
	}
	if s.TopP != nil {
		opts["top_p"] = *s.TopP
	}
	if s.MaxTokens != nil {
		opts["num_predict"] = *s.MaxTokens
	}
	return opts
}
