package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"WebTool-Platform/internal/agent"
	"WebTool-Platform/internal/api"
	"WebTool-Platform/internal/config"
	"WebTool-Platform/internal/dispatch"
	"WebTool-Platform/internal/llm"
	"WebTool-Platform/internal/llm/provider"
	"WebTool-Platform/internal/observability/alerting"
	"WebTool-Platform/internal/observability/metrics"
	"WebTool-Platform/internal/ratelimit"
	"WebTool-Platform/internal/registry"
	"WebTool-Platform/pkg/logger"
)

// daemon 保存启动阶段构建出的全部组件。
type daemon struct {
	cfg      *config.Config
	registry *registry.Registry
	service  *dispatch.Service
	log      *slog.Logger
	closers  []io.Closer
}

// bootstrap 加载配置并装配服务。wantModel 决定是否需要创建大模型客户端，
// 不需要时智能体调用会返回初始化失败。
func bootstrap(ctx context.Context, path string, wantModel func(*registry.Registry) bool) (*daemon, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(loggerConfig(cfg.Logging)); err != nil {
		return nil, err
	}
	rt := &daemon{cfg: cfg, log: logger.Named("webtoold")}

	catalog, err := buildCatalog(cfg.Agents)
	if err != nil {
		return nil, err
	}
	reg, err := registry.Default(catalog)
	if err != nil {
		return nil, err
	}
	rt.registry = reg

	var client llm.Client
	if wantModel(reg) {
		c, closer, err := provider.New(ctx, cfg.LLM)
		if err != nil {
			return nil, err
		}
		client = c
		if closer != nil {
			rt.closers = append(rt.closers, closer)
		}
		rt.log.Info("大模型客户端已就绪", slog.String("provider", cfg.LLM.Provider), slog.Duration("timeout", cfg.LLM.Timeout()))
	}

	executor := agent.NewExecutor(client, agent.WithTimeout(cfg.LLM.Timeout()))
	opts := []dispatch.Option{dispatch.WithBasePath(cfg.Server.BasePath)}
	if alerts := buildAlerts(cfg.Alerting); alerts.Len() > 0 {
		opts = append(opts, dispatch.WithAlerts(alerts))
	}
	rt.service = dispatch.New(reg, executor, opts...)
	return rt, nil
}

// serve 启动 API 服务，直到 ctx 结束。
func (rt *daemon) serve(ctx context.Context) error {
	cfg := rt.cfg
	limiter, closer, err := ratelimit.New(ctx, cfg.RateLimit)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, closer)

	opts := api.Options{
		Address:     cfg.Server.Address,
		BasePath:    cfg.Server.BasePath,
		CORSOrigins: cfg.Server.CORSOrigins,
		Limiter:     limiter,
		Version:     version,
	}
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Address == "" {
			opts.MetricsPath = cfg.Metrics.Path
		} else {
			go func() {
				if err := metrics.StartServer(ctx, cfg.Metrics.Address, cfg.Metrics.Path); err != nil && !errors.Is(err, context.Canceled) {
					rt.log.Error("指标服务异常退出", slog.Any("error", err))
				}
			}()
		}
	}

	rt.log.Info("服务启动",
		slog.String("version", version),
		slog.Int("agents", len(rt.registry.AgentSlugs())),
		slog.Int("tools", len(rt.registry.ToolSlugs())),
		slog.String("rate_limit", cfg.RateLimit.Driver),
	)
	err = api.NewServer(rt.service, opts).Start(ctx)
	rt.service.Wait()
	if errors.Is(err, context.Canceled) {
		rt.log.Info("服务已停止")
		return nil
	}
	return err
}

// Close 释放外部连接并刷新日志。
func (rt *daemon) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			rt.log.Warn("释放资源失败", slog.Any("error", err))
		}
	}
	_ = logger.Sync()
}

func loggerConfig(cfg config.LoggingConfig) logger.Config {
	return logger.Config{
		Level:       cfg.Level,
		Format:      cfg.Format,
		OutputPaths: cfg.Outputs,
		AddSource:   cfg.AddSource,
		Audit: logger.AuditConfig{
			Enabled:    cfg.Audit.Enabled,
			Path:       cfg.Audit.Path,
			MaxSizeMB:  cfg.Audit.MaxSizeMB,
			MaxBackups: cfg.Audit.MaxBackups,
			MaxAgeDays: cfg.Audit.MaxAgeDays,
			Compress:   cfg.Audit.Compress,
		},
	}
}

// buildCatalog 合并内置智能体与外部目录文件。
func buildCatalog(cfg config.AgentsConfig) (agent.Catalog, error) {
	var catalog agent.Catalog
	if !cfg.DisableBuiltin {
		catalog = append(catalog, agent.Builtin()...)
	}
	extra, err := agent.LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	return append(catalog, extra...), nil
}

func buildAlerts(cfg config.AlertingConfig) *alerting.FanoutDispatcher {
	var notifiers []alerting.Notifier
	if cfg.LogEvents {
		notifiers = append(notifiers, &alerting.LogNotifier{})
	}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, &alerting.WebhookNotifier{
			URL:    cfg.WebhookURL,
			Client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		})
	}
	return alerting.NewFanout(notifiers...)
}
