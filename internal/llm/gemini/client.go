package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"WebTool-Platform/internal/llm"
)

const defaultModelName = "gemini-2.5-flash"

// Config 描述原生 Gemini 接口的连接参数。
type Config struct {
	APIKey   string
	Model    string
	Endpoint string
}

// Client 通过 generative-ai-go 调用 Gemini。
type Client struct {
	api   *genai.Client
	model string
}

// NewClient 创建 Gemini 客户端，调用方负责在退出时 Close。
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("未提供 Gemini API Key")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModelName
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	api, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("初始化 Gemini 客户端失败: %w", err)
	}
	return &Client{api: api, model: model}, nil
}

// Close 释放底层连接。
func (c *Client) Close() error {
	if c == nil || c.api == nil {
		return nil
	}
	return c.api.Close()
}

// Complete 调用 GenerateContent 生成文本。
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	// GenerativeModel 每次返回新的实例，设置采样参数不会影响并发请求。
	model := c.api.GenerativeModel(c.model)
	if strings.TrimSpace(req.Instructions) != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.Instructions)}}
	}
	applySampling(model, req.Sampling)

	resp, err := model.GenerateContent(ctx, genai.Text(req.Input))
	if err != nil {
		return nil, fmt.Errorf("Gemini 生成失败: %w", err)
	}
	return convert(resp)
}

func applySampling(model *genai.GenerativeModel, s llm.Sampling) {
	if s.Temperature != nil {
		model.SetTemperature(float32(*s.Temperature))
	}
	if s.TopP != nil {
		model.SetTopP(float32(*s.TopP))
	}
	if s.MaxTokens != nil {
		model.SetMaxOutputTokens(maxOutputTokens(*s.MaxTokens))
	}
}

// maxOutputTokens 将上限收敛到 int32 范围内。
func maxOutputTokens(n int) int32 {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(n)
}

func convert(resp *genai.GenerateContentResponse) (*llm.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("Gemini 响应为空")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	content := strings.TrimSpace(b.String())
	if content == "" {
		return nil, errors.New("Gemini 响应内容为空")
	}

	out := &llm.Response{Text: content}
	if meta := resp.UsageMetadata; meta != nil {
		out.Usage = llm.CountUsage(int(meta.PromptTokenCount), int(meta.CandidatesTokenCount), int(meta.TotalTokenCount))
	}
	return out, nil
}
