package dispatch

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"WebTool-Platform/internal/agent"
	xerrors "WebTool-Platform/internal/errors"
	"WebTool-Platform/internal/observability/alerting"
	"WebTool-Platform/internal/observability/metrics"
	"WebTool-Platform/internal/registry"
	"WebTool-Platform/internal/schema"
	"WebTool-Platform/internal/tools"
	"WebTool-Platform/pkg/logger"
)

// DefaultBasePath 是路由的默认前缀，用于 NotFound 提示。
const DefaultBasePath = "/api/v1/agents"

const alertTimeout = 10 * time.Second

// AgentExecutor 抽象智能体执行能力，便于测试替换。
type AgentExecutor interface {
	Execute(ctx context.Context, d *agent.Descriptor, inv agent.Invocation) (*schema.Response, error)
}

// Service 负责校验请求、解析 slug 并分派到智能体或工具。
type Service struct {
	registry *registry.Registry
	executor AgentExecutor
	alerts   alerting.Dispatcher
	basePath string
	newID    func() string
	log      *slog.Logger
	audit    *slog.Logger

	pending sync.WaitGroup
}

// Option 定义可选的 Service 配置。
type Option func(*Service)

// WithAlerts 配置告警分发器。
func WithAlerts(d alerting.Dispatcher) Option {
	return func(s *Service) {
		s.alerts = d
	}
}

// WithBasePath 设置 NotFound 提示中使用的路由前缀。
func WithBasePath(base string) Option {
	return func(s *Service) {
		if base != "" {
			s.basePath = base
		}
	}
}

// WithIDGenerator 替换工具执行 ID 的生成方式。
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger 指定运行日志与审计日志。
func WithLogger(log, audit *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
		if audit != nil {
			s.audit = audit
		}
	}
}

// New 创建 Service。
func New(reg *registry.Registry, exec AgentExecutor, opts ...Option) *Service {
	s := &Service{
		registry: reg,
		executor: exec,
		basePath: DefaultBasePath,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.log == nil {
		s.log = logger.Named("dispatch")
	}
	if s.audit == nil {
		s.audit = logger.Audit()
	}
	return s
}

// Listing 返回全部 slug。
func (s *Service) Listing() schema.Listing {
	return schema.Listing{
		Agents: s.registry.AgentSlugs(),
		Tools:  s.registry.ToolSlugs(),
		All:    s.registry.AllSlugs(),
	}
}

// AgentSlugs 返回智能体 slug。
func (s *Service) AgentSlugs() []string { return s.registry.AgentSlugs() }

// ToolSlugs 返回工具 slug。
func (s *Service) ToolSlugs() []string { return s.registry.ToolSlugs() }

// Process 处理一次请求：先校验请求体，再解析 slug，最后按处理器类型分派。
func (s *Service) Process(ctx context.Context, slug string, req *schema.ProcessRequest) (*schema.Response, error) {
	start := time.Now()
	if req == nil {
		req = &schema.ProcessRequest{}
	}

	if err := req.Validate(); err != nil {
		s.finish(ctx, slug, "", "", "validation_failed", start, err)
		return nil, err
	}

	handler, ok := s.registry.Resolve(slug)
	if !ok {
		err := xerrors.New(xerrors.CodeNotFound,
			fmt.Sprintf("Tool '%s' not found. Use %s/list to see available tools.", slug, s.basePath),
			xerrors.WithMetadata("slug", slug))
		s.finish(ctx, slug, "", "", "not_found", start, err)
		return nil, err
	}

	switch handler.Kind {
	case registry.KindTool:
		resp, outcome, err := s.runTool(handler.Tool, req.Prompt)
		id := ""
		if resp != nil {
			id = resp.ExecutionID
		}
		s.finish(ctx, slug, handler.Kind, id, outcome, start, err)
		return resp, err
	case registry.KindAgent:
		resp, err := s.executor.Execute(ctx, handler.Agent, agent.Invocation{
			Prompt:   req.Prompt,
			Settings: req.Settings,
			Context:  req.UserContext,
		})
		if err != nil {
			s.finish(ctx, slug, handler.Kind, xerrors.MetadataOf(err, "execution_id"), outcomeOf(err), start, err)
			return nil, err
		}
		s.finish(ctx, slug, handler.Kind, resp.ExecutionID, "success", start, nil)
		return resp, nil
	default:
		err := xerrors.New(xerrors.CodeUnknown, "", xerrors.WithMetadata("slug", slug))
		s.finish(ctx, slug, handler.Kind, "", "error", start, err)
		return nil, err
	}
}

// runTool 执行确定性工具。输入错误以文本形式作为成功内容返回，从不携带 usage。
func (s *Service) runTool(tool tools.Tool, prompt string) (*schema.Response, string, error) {
	id := s.newID()
	out, err := tool.Run(prompt)
	if err == nil {
		return schema.Success(id, out, nil), "success", nil
	}

	var inputErr *tools.InputError
	if stdErrors.As(err, &inputErr) {
		s.log.Warn("tool rejected input",
			slog.String("tool", tool.Slug),
			slog.String("execution_id", id),
			slog.String("reason", inputErr.Reason),
		)
		return schema.Success(id, inputErr.Error(), nil), "tool_input_error", nil
	}
	return nil, "error", xerrors.Wrap(xerrors.CodeExecutorFailure, err, "", xerrors.WithMetadata("execution_id", id))
}

// finish 统一记录指标、审计日志与告警。
func (s *Service) finish(ctx context.Context, slug string, kind registry.Kind, executionID, outcome string, start time.Time, err error) {
	elapsed := time.Since(start)

	label := slug
	kindLabel := string(kind)
	if kind == "" {
		if h, ok := s.registry.Resolve(slug); ok {
			kindLabel = string(h.Kind)
		} else {
			label, kindLabel = "unknown", "none"
		}
	}
	metrics.ObserveProcess(label, kindLabel, outcome)

	attrs := []any{
		slog.String("slug", slug),
		slog.String("kind", kindLabel),
		slog.String("execution_id", executionID),
		slog.String("outcome", outcome),
		slog.Duration("duration", elapsed),
	}
	if err != nil {
		attrs = append(attrs, slog.String("code", string(xerrors.CodeOf(err))))
	}
	s.audit.InfoContext(ctx, "process", attrs...)

	if err != nil && s.alerts != nil && xerrors.ShouldAlert(err) {
		event := alerting.FromError(err, slug)
		event.Metadata = map[string]string{"kind": kindLabel, "outcome": outcome}
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
			defer cancel()
			if nerr := s.alerts.Notify(alertCtx, event); nerr != nil {
				s.log.Warn("发送告警失败", slog.String("slug", slug), slog.Any("error", nerr))
			}
		}()
	}
}

// Wait 等待已触发的告警发送完成，用于优雅退出。
func (s *Service) Wait() {
	s.pending.Wait()
}

func outcomeOf(err error) string {
	switch xerrors.CodeOf(err) {
	case xerrors.CodeTimeout:
		return "timeout"
	case xerrors.CodeCanceled:
		return "canceled"
	default:
		return "error"
	}
}
