package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load("", envMap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:8000" {
		t.Fatalf("unexpected address: %s", cfg.Server.Address)
	}
	if cfg.Server.BasePath != "/api/v1/agents" {
		t.Fatalf("unexpected base path: %s", cfg.Server.BasePath)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.OpenAI.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		t.Fatalf("api key must not have a default value")
	}
	if cfg.LLM.Timeout() != 60*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.LLM.Timeout())
	}
	want := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Fatalf("unexpected cors origins: %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadYAMLWithRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webtool.yaml")
	content := `
server:
  address: ":9000"
  base_path: "tools/"
llm:
  provider: echo
  timeout_seconds: 5
agents:
  catalog: agents.yaml
rate_limit:
  driver: memory
logging:
  audit:
    enabled: true
    path: logs/audit.log
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := load(path, envMap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Address != ":9000" {
		t.Fatalf("unexpected address: %s", cfg.Server.Address)
	}
	if cfg.Server.BasePath != "/tools" {
		t.Fatalf("base path should be normalised, got %s", cfg.Server.BasePath)
	}
	if cfg.Agents.Catalog != filepath.Join(dir, "agents.yaml") {
		t.Fatalf("catalog path should be resolved: %s", cfg.Agents.Catalog)
	}
	if cfg.Logging.Audit.Path != filepath.Join(dir, "logs", "audit.log") {
		t.Fatalf("audit path should be resolved: %s", cfg.Logging.Audit.Path)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 || cfg.RateLimit.Burst != 10 {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.LLM.Timeout() != 5*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.LLM.Timeout())
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webtool.json")
	if err := os.WriteFile(path, []byte(`{"llm":{"provider":"anthropic","anthropic":{"model":"claude-x"}}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := load(path, envMap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.LLM.Anthropic.Model != "claude-x" {
		t.Fatalf("unexpected llm config: %+v", cfg.LLM)
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg, err := load("", envMap(map[string]string{
		"HOST":            "0.0.0.0",
		"PORT":            "8080",
		"DEBUG":           "true",
		"CORS_ORIGINS":    `["https://app.example.com"]`,
		"GEMINI_MODEL":    "gemini-2.0-flash",
		"GEMINI_BASE_URL": "https://proxy.example.com/v1/",
		"LLM_PROVIDER":    "Gemini",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Address != "0.0.0.0:8080" {
		t.Fatalf("unexpected address: %s", cfg.Server.Address)
	}
	if !cfg.Server.Debug || cfg.Logging.Level != "debug" {
		t.Fatalf("debug should raise log level: %+v", cfg.Logging)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"https://app.example.com"}) {
		t.Fatalf("unexpected origins: %v", cfg.Server.CORSOrigins)
	}
	if cfg.LLM.OpenAI.Model != "gemini-2.0-flash" || cfg.LLM.Gemini.Model != "gemini-2.0-flash" {
		t.Fatalf("model override not applied: %+v", cfg.LLM)
	}
	if cfg.LLM.OpenAI.BaseURL != "https://proxy.example.com/v1/" {
		t.Fatalf("base url override not applied: %s", cfg.LLM.OpenAI.BaseURL)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Fatalf("provider override not applied: %s", cfg.LLM.Provider)
	}
}

func TestEnvCommaSeparatedOrigins(t *testing.T) {
	cfg, err := load("", envMap(map[string]string{"CORS_ORIGINS": "https://a.example.com, https://b.example.com,"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Fatalf("unexpected origins: %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"bad port":  {"PORT": "http"},
		"bad debug": {"DEBUG": "maybe"},
		"provider":  {"LLM_PROVIDER": "python_bridge"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := load("", envMap(env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := load(filepath.Join(t.TempDir(), "missing.json"), envMap(nil)); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})

	t.Run("redis without address", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "c.json")
		_ = os.WriteFile(path, []byte(`{"rate_limit":{"driver":"redis"}}`), 0o644)
		if _, err := load(path, envMap(nil)); err == nil {
			t.Fatalf("expected error for redis without address")
		}
	})
}

func TestResolveKey(t *testing.T) {
	t.Setenv("WEBTOOL_TEST_KEY", " from-env ")
	if got := ResolveKey("", "WEBTOOL_TEST_KEY"); got != "from-env" {
		t.Fatalf("unexpected key: %q", got)
	}
	if got := ResolveKey("explicit", "WEBTOOL_TEST_KEY"); got != "explicit" {
		t.Fatalf("explicit key should win: %q", got)
	}
	if got := ResolveKey("", ""); got != "" {
		t.Fatalf("expected empty key: %q", got)
	}
}
