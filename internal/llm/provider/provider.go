// Package provider builds the configured llm.Client once at startup.
package provider

import (
	"context"
	"fmt"
	"io"

	"WebTool-Platform/internal/config"
	"WebTool-Platform/internal/llm"
	"WebTool-Platform/internal/llm/anthropic"
	"WebTool-Platform/internal/llm/echo"
	"WebTool-Platform/internal/llm/gemini"
	"WebTool-Platform/internal/llm/ollama"
	"WebTool-Platform/internal/llm/openai"
)

// New 根据配置创建模型客户端。返回的 io.Closer 可能为 nil。
func New(ctx context.Context, cfg config.LLMConfig) (llm.Client, io.Closer, error) {
	switch cfg.Provider {
	case "", "openai":
		apiKey := config.ResolveKey(cfg.OpenAI.APIKey, cfg.OpenAI.APIKeyEnv)
		if apiKey == "" {
			return nil, nil, fmt.Errorf("openai provider 需要配置 api_key 或环境变量 %s", cfg.OpenAI.APIKeyEnv)
		}
		client, err := openai.NewClient(openai.Config{
			APIKey:  apiKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.Timeout(),
		})
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	case "gemini":
		apiKey := config.ResolveKey(cfg.Gemini.APIKey, cfg.Gemini.APIKeyEnv)
		if apiKey == "" {
			return nil, nil, fmt.Errorf("gemini provider 需要配置 api_key 或环境变量 %s", cfg.Gemini.APIKeyEnv)
		}
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:   apiKey,
			Model:    cfg.Gemini.Model,
			Endpoint: cfg.Gemini.Endpoint,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	case "anthropic":
		apiKey := config.ResolveKey(cfg.Anthropic.APIKey, cfg.Anthropic.APIKeyEnv)
		if apiKey == "" {
			return nil, nil, fmt.Errorf("anthropic provider 需要配置 api_key 或环境变量 %s", cfg.Anthropic.APIKeyEnv)
		}
		client, err := anthropic.NewClient(anthropic.Config{
			APIKey:    apiKey,
			BaseURL:   cfg.Anthropic.BaseURL,
			Model:     cfg.Anthropic.Model,
			MaxTokens: cfg.Anthropic.MaxTokens,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	case "ollama":
		client, err := ollama.NewClient(ollama.Config{
			Host:    cfg.Ollama.Host,
			Model:   cfg.Ollama.Model,
			Timeout: cfg.Timeout(),
		})
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	case "echo":
		return echo.NewClient(cfg.Echo.Prefix), nil, nil
	default:
		return nil, nil, fmt.Errorf("未知的大模型 provider: %s", cfg.Provider)
	}
}
