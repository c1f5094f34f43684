package provider

import (
	"context"
	"testing"

	"WebTool-Platform/internal/config"
	"WebTool-Platform/internal/llm/anthropic"
	"WebTool-Platform/internal/llm/echo"
	"WebTool-Platform/internal/llm/ollama"
	"WebTool-Platform/internal/llm/openai"
)

func TestNewSelectsProvider(t *testing.T) {
	t.Setenv("WEBTOOL_TEST_OPENAI_KEY", "k1")
	t.Setenv("WEBTOOL_TEST_ANTHROPIC_KEY", "k2")

	cases := []struct {
		name  string
		cfg   config.LLMConfig
		check func(any) bool
	}{
		{
			name:  "openai via env key",
			cfg:   config.LLMConfig{Provider: "openai", OpenAI: config.OpenAIConfig{APIKeyEnv: "WEBTOOL_TEST_OPENAI_KEY"}},
			check: func(c any) bool { _, ok := c.(*openai.Client); return ok },
		},
		{
			name:  "anthropic via env key",
			cfg:   config.LLMConfig{Provider: "anthropic", Anthropic: config.AnthropicConfig{APIKeyEnv: "WEBTOOL_TEST_ANTHROPIC_KEY"}},
			check: func(c any) bool { _, ok := c.(*anthropic.Client); return ok },
		},
		{
			name:  "ollama",
			cfg:   config.LLMConfig{Provider: "ollama"},
			check: func(c any) bool { _, ok := c.(*ollama.Client); return ok },
		},
		{
			name:  "echo",
			cfg:   config.LLMConfig{Provider: "echo"},
			check: func(c any) bool { _, ok := c.(*echo.Client); return ok },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, closer, err := New(context.Background(), tc.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.check(client) {
				t.Fatalf("unexpected client type %T", client)
			}
			if closer != nil {
				t.Fatalf("did not expect a closer for %s", tc.cfg.Provider)
			}
		})
	}
}

func TestNewErrors(t *testing.T) {
	cases := map[string]config.LLMConfig{
		"unknown":          {Provider: "python_bridge"},
		"openai no key":    {Provider: "openai", OpenAI: config.OpenAIConfig{APIKeyEnv: "WEBTOOL_TEST_UNSET_KEY"}},
		"gemini no key":    {Provider: "gemini", Gemini: config.GeminiConfig{APIKeyEnv: "WEBTOOL_TEST_UNSET_KEY"}},
		"anthropic no key": {Provider: "anthropic"},
		"ollama bad host":  {Provider: "ollama", Ollama: config.OllamaConfig{Host: "::"}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			client, closer, err := New(context.Background(), cfg)
			if err == nil {
				t.Fatalf("expected error")
			}
			if client != nil || closer != nil {
				t.Fatalf("expected nil client on error, got %T", client)
			}
		})
	}
}
