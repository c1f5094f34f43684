package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 描述了 WebTool 在启动阶段需要加载的全部配置，启动后只读。
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Agents    AgentsConfig    `json:"agents" yaml:"agents"`
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	Alerting  AlertingConfig  `json:"alerting" yaml:"alerting"`
}

// ServerConfig 控制 API 服务的监听地址、路由前缀与跨域来源。
type ServerConfig struct {
	Address     string   `json:"address" yaml:"address"`
	BasePath    string   `json:"base_path" yaml:"base_path"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
	Debug       bool     `json:"debug" yaml:"debug"`
}

// LLMConfig 用于选择并配置大模型服务。
type LLMConfig struct {
	Provider       string          `json:"provider" yaml:"provider"`
	TimeoutSeconds int             `json:"timeout_seconds" yaml:"timeout_seconds"`
	OpenAI         OpenAIConfig    `json:"openai" yaml:"openai"`
	Gemini         GeminiConfig    `json:"gemini" yaml:"gemini"`
	Anthropic      AnthropicConfig `json:"anthropic" yaml:"anthropic"`
	Ollama         OllamaConfig    `json:"ollama" yaml:"ollama"`
	Echo           EchoConfig      `json:"echo" yaml:"echo"`
}

// Timeout 返回单次模型调用的上限。
func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OpenAIConfig 描述 OpenAI 兼容端点，默认指向 Gemini 的兼容接口。
type OpenAIConfig struct {
	APIKey    string `json:"api_key" yaml:"api_key"`
	APIKeyEnv string `json:"api_key_env" yaml:"api_key_env"`
	BaseURL   string `json:"base_url" yaml:"base_url"`
	Model     string `json:"model" yaml:"model"`
}

// GeminiConfig 描述原生 Gemini 接口。
type GeminiConfig struct {
	APIKey    string `json:"api_key" yaml:"api_key"`
	APIKeyEnv string `json:"api_key_env" yaml:"api_key_env"`
	Model     string `json:"model" yaml:"model"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
}

// AnthropicConfig 描述 Anthropic Messages 接口。
type AnthropicConfig struct {
	APIKey    string `json:"api_key" yaml:"api_key"`
	APIKeyEnv string `json:"api_key_env" yaml:"api_key_env"`
	BaseURL   string `json:"base_url" yaml:"base_url"`
	Model     string `json:"model" yaml:"model"`
	MaxTokens int    `json:"max_tokens" yaml:"max_tokens"`
}

// OllamaConfig 描述本地 Ollama 服务。
type OllamaConfig struct {
	Host  string `json:"host" yaml:"host"`
	Model string `json:"model" yaml:"model"`
}

// EchoConfig 配置离线回显模型。
type EchoConfig struct {
	Prefix string `json:"prefix" yaml:"prefix"`
}

// AgentsConfig 控制智能体目录的来源。
type AgentsConfig struct {
	Catalog        string `json:"catalog" yaml:"catalog"`
	DisableBuiltin bool   `json:"disable_builtin" yaml:"disable_builtin"`
}

// RateLimitConfig 控制入口限流，driver 为空表示关闭。
type RateLimitConfig struct {
	Driver            string      `json:"driver" yaml:"driver"`
	RequestsPerSecond float64     `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int         `json:"burst" yaml:"burst"`
	Redis             RedisConfig `json:"redis" yaml:"redis"`
}

// RedisConfig 描述 Redis 连接信息。
type RedisConfig struct {
	Address  string `json:"address" yaml:"address"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	Prefix   string `json:"prefix" yaml:"prefix"`
}

// LoggingConfig 对应 pkg/logger 的配置。
type LoggingConfig struct {
	Level     string      `json:"level" yaml:"level"`
	Format    string      `json:"format" yaml:"format"`
	Outputs   []string    `json:"outputs" yaml:"outputs"`
	AddSource bool        `json:"add_source" yaml:"add_source"`
	Audit     AuditConfig `json:"audit" yaml:"audit"`
}

// AuditConfig 控制审计日志落盘与轮转。
type AuditConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Path       string `json:"path" yaml:"path"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `json:"compress" yaml:"compress"`
}

// MetricsConfig 控制 Prometheus 指标的暴露方式。
// Address 为空时指标挂载在 API 服务上，否则单独监听。
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
	Address string `json:"address" yaml:"address"`
}

// AlertingConfig 控制执行失败时的告警渠道。
type AlertingConfig struct {
	WebhookURL     string `json:"webhook_url" yaml:"webhook_url"`
	LogEvents      bool   `json:"log_events" yaml:"log_events"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
}

const (
	defaultAddress        = "127.0.0.1:8000"
	defaultBasePath       = "/api/v1/agents"
	defaultTimeoutSeconds = 60
	defaultMetricsPath    = "/metrics"
)

// 支持的 provider 与限流驱动。
var (
	Providers        = []string{"openai", "gemini", "anthropic", "ollama", "echo"}
	RateLimitDrivers = []string{"", "memory", "redis"}
)

// Default 返回只包含默认值的配置。
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults("")
	return cfg
}

// Load 解析 JSON 或 YAML 配置文件，再叠加环境变量。path 为空时只使用默认值和环境变量。
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	var cfg Config
	baseDir := ""
	if strings.TrimSpace(path) != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
		baseDir = filepath.Dir(path)
	}

	cfg.applyDefaults(baseDir)
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开配置文件失败: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, cfg)
	default:
		err = json.Unmarshal(content, cfg)
	}
	if err != nil {
		return fmt.Errorf("解析配置失败: %w", err)
	}
	return nil
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = defaultBasePath
	}
	c.Server.BasePath = "/" + strings.Trim(c.Server.BasePath, "/")
	if c.Server.CORSOrigins == nil {
		c.Server.CORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.LLM.OpenAI.APIKeyEnv == "" {
		c.LLM.OpenAI.APIKeyEnv = "GEMINI_API_KEY"
	}
	if c.LLM.OpenAI.BaseURL == "" {
		c.LLM.OpenAI.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	}
	if c.LLM.OpenAI.Model == "" {
		c.LLM.OpenAI.Model = "gemini-2.5-flash"
	}
	if c.LLM.Gemini.APIKeyEnv == "" {
		c.LLM.Gemini.APIKeyEnv = "GEMINI_API_KEY"
	}
	if c.LLM.Gemini.Model == "" {
		c.LLM.Gemini.Model = "gemini-2.5-flash"
	}
	if c.LLM.Anthropic.APIKeyEnv == "" {
		c.LLM.Anthropic.APIKeyEnv = "ANTHROPIC_API_KEY"
	}

	if c.Agents.Catalog != "" && baseDir != "" && !filepath.IsAbs(c.Agents.Catalog) {
		c.Agents.Catalog = filepath.Join(baseDir, c.Agents.Catalog)
	}

	if c.RateLimit.Driver != "" {
		if c.RateLimit.RequestsPerSecond <= 0 {
			c.RateLimit.RequestsPerSecond = 5
		}
		if c.RateLimit.Burst <= 0 {
			c.RateLimit.Burst = 10
		}
		if c.RateLimit.Redis.Prefix == "" {
			c.RateLimit.Redis.Prefix = "webtool:ratelimit"
		}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Audit.Path != "" && baseDir != "" && !filepath.IsAbs(c.Logging.Audit.Path) {
		c.Logging.Audit.Path = filepath.Join(baseDir, c.Logging.Audit.Path)
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = defaultMetricsPath
	}
	if c.Alerting.TimeoutSeconds <= 0 {
		c.Alerting.TimeoutSeconds = 5
	}
}

// applyEnv 兼容旧版服务的环境变量：HOST、PORT、DEBUG、CORS_ORIGINS 与 GEMINI_*。
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("GEMINI_BASE_URL"); ok {
		c.LLM.OpenAI.BaseURL = v
	}
	if v, ok := get("GEMINI_MODEL"); ok {
		c.LLM.OpenAI.Model = v
		c.LLM.Gemini.Model = v
	}
	if v, ok := get("LLM_PROVIDER"); ok {
		c.LLM.Provider = strings.ToLower(v)
	}

	host, port, ok := splitAddress(c.Server.Address)
	if !ok {
		return fmt.Errorf("无效的监听地址: %q", c.Server.Address)
	}
	if v, ok := get("HOST"); ok {
		host = v
	}
	if v, ok := get("PORT"); ok {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("无效的 PORT: %q", v)
		}
		port = v
	}
	c.Server.Address = net.JoinHostPort(host, port)

	if v, ok := get("DEBUG"); ok {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("无效的 DEBUG: %q", v)
		}
		c.Server.Debug = debug
		if debug {
			c.Logging.Level = "debug"
		}
	}

	if v, ok := get("CORS_ORIGINS"); ok {
		origins, err := parseOrigins(v)
		if err != nil {
			return err
		}
		c.Server.CORSOrigins = origins
	}
	return nil
}

func splitAddress(addr string) (string, string, bool) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", "", false
	}
	return host, port, true
}

// parseOrigins 同时接受 JSON 数组与逗号分隔列表。
func parseOrigins(raw string) ([]string, error) {
	if strings.HasPrefix(raw, "[") {
		var origins []string
		if err := json.Unmarshal([]byte(raw), &origins); err != nil {
			return nil, fmt.Errorf("解析 CORS_ORIGINS 失败: %w", err)
		}
		return origins, nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins, nil
}

// Validate 检查配置之间的一致性。
func (c *Config) Validate() error {
	if !contains(Providers, c.LLM.Provider) {
		return fmt.Errorf("未知的大模型 provider: %s", c.LLM.Provider)
	}
	if !contains(RateLimitDrivers, c.RateLimit.Driver) {
		return fmt.Errorf("未知的限流驱动: %s", c.RateLimit.Driver)
	}
	if c.RateLimit.Driver == "redis" && strings.TrimSpace(c.RateLimit.Redis.Address) == "" {
		return errors.New("redis 限流需要配置 rate_limit.redis.address")
	}
	if c.Logging.Audit.Enabled && strings.TrimSpace(c.Logging.Audit.Path) == "" {
		return errors.New("启用审计日志时必须配置 logging.audit.path")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path 必须以 / 开头: %s", c.Metrics.Path)
	}
	return nil
}

// ResolveKey 优先使用显式配置的 key，否则读取 env 指定的环境变量。
func ResolveKey(key, env string) string {
	if k := strings.TrimSpace(key); k != "" {
		return k
	}
	if env == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(env))
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
