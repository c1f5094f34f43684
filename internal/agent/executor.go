package agent

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	xerrors "WebTool-Platform/internal/errors"
	"WebTool-Platform/internal/llm"
	"WebTool-Platform/internal/observability/metrics"
	"WebTool-Platform/internal/schema"
	"WebTool-Platform/pkg/logger"
)

// DefaultTimeout 是单次模型调用的默认超时时间。
const DefaultTimeout = 60 * time.Second

// Invocation 描述一次智能体调用的输入。
type Invocation struct {
	Prompt   string
	Settings *schema.Settings
	Context  schema.UserContext
}

// Executor 负责执行智能体：拼接输入、合并采样参数并调用大模型。
// Executor 本身无状态，可被多个 goroutine 并发使用。
type Executor struct {
	client  llm.Client
	timeout time.Duration
	newID   func() string
	log     *slog.Logger
}

// Option 定义可选的 Executor 配置。
type Option func(*Executor)

// WithTimeout 设置调用大模型的超时时间，非正值使用默认值。
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		if timeout <= 0 {
			e.timeout = DefaultTimeout
			return
		}
		e.timeout = timeout
	}
}

// WithIDGenerator 替换执行 ID 的生成方式。
func WithIDGenerator(fn func() string) Option {
	return func(e *Executor) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithLogger 指定日志记录器。
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// NewExecutor 创建一个 Executor。
func NewExecutor(client llm.Client, opts ...Option) *Executor {
	e := &Executor{
		client:  client,
		timeout: DefaultTimeout,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.log == nil {
		e.log = logger.Named("agent")
	}
	return e
}

// Timeout 返回生效的超时时间。
func (e *Executor) Timeout() time.Duration { return e.timeout }

// Execute 执行一次智能体调用。
//
// 失败时返回的统一错误只携带对外安全的描述，执行 ID 放在 metadata 的
// execution_id 中；原始错误仅写入日志。
func (e *Executor) Execute(ctx context.Context, d *Descriptor, inv Invocation) (*schema.Response, error) {
	executionID := e.newID()
	idMeta := xerrors.WithMetadata("execution_id", executionID)

	if e.client == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "", idMeta)
	}
	if d == nil {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "agent descriptor is required", idMeta)
	}

	req := llm.Request{
		Instructions: d.SystemPrompt(),
		Input:        ComposeInput(inv.Prompt, inv.Context),
		Sampling:     d.Sampling().Merge(inv.Settings.Sampling()),
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.client.Complete(callCtx, req)
	elapsed := time.Since(start)

	if err == nil && resp == nil {
		err = stdErrors.New("empty response from model")
	}
	if err != nil {
		code := classify(ctx, callCtx, err)
		metrics.ObserveOracle(outcomeOf(code), elapsed)
		e.log.Error("agent execution failed",
			slog.String("agent", d.Name()),
			slog.String("execution_id", executionID),
			slog.String("code", string(code)),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err),
		)
		return nil, xerrors.Wrap(code, err, "", idMeta)
	}
	metrics.ObserveOracle("success", elapsed)

	content := resp.Text
	if d.OutputShape() == ShapeList {
		content = normalizeList(content)
	}

	e.log.Debug("agent execution finished",
		slog.String("agent", d.Name()),
		slog.String("execution_id", executionID),
		slog.Duration("elapsed", elapsed),
	)
	return schema.Success(executionID, content, schema.UsageFrom(resp.Usage)), nil
}

// classify 区分超时、调用方取消与其他上游错误。
func classify(parent, callCtx context.Context, err error) xerrors.Code {
	switch {
	case stdErrors.Is(parent.Err(), context.Canceled):
		return xerrors.CodeCanceled
	case stdErrors.Is(err, context.DeadlineExceeded), stdErrors.Is(callCtx.Err(), context.DeadlineExceeded):
		return xerrors.CodeTimeout
	default:
		return xerrors.CodeExecutorFailure
	}
}

func outcomeOf(code xerrors.Code) string {
	switch code {
	case xerrors.CodeTimeout:
		return "timeout"
	case xerrors.CodeCanceled:
		return "canceled"
	default:
		return "error"
	}
}
