package registry

import (
	"fmt"
	"strings"

	"WebTool-Platform/internal/agent"
	xerrors "WebTool-Platform/internal/errors"
	"WebTool-Platform/internal/tools"
)

// Kind 区分处理器类型。
type Kind string

const (
	KindAgent Kind = "agent"
	KindTool  Kind = "tool"
)

// Handler 是 slug 解析后的处理器，Kind 决定 Agent 与 Tool 中哪一个有效。
type Handler struct {
	Slug  string
	Kind  Kind
	Agent *agent.Descriptor
	Tool  tools.Tool
}

// Registry 是构建完成后只读的 slug 路由表，并发读取无需加锁。
type Registry struct {
	handlers map[string]Handler
	agents   []string
	tools    []string
}

// Builder 用于在启动阶段收集处理器。
type Builder struct {
	entries []Handler
}

// NewBuilder 创建一个空的 Builder。
func NewBuilder() *Builder {
	return &Builder{}
}

// RegisterAgent 将一个或多个 slug 绑定到同一个智能体。
func (b *Builder) RegisterAgent(d *agent.Descriptor, slugs ...string) *Builder {
	for _, slug := range slugs {
		b.entries = append(b.entries, Handler{Slug: slug, Kind: KindAgent, Agent: d})
	}
	return b
}

// RegisterCatalog 按顺序注册目录中的全部绑定。
func (b *Builder) RegisterCatalog(catalog agent.Catalog) *Builder {
	for _, binding := range catalog {
		b.RegisterAgent(binding.Descriptor, binding.Slugs...)
	}
	return b
}

// RegisterTool 注册一个确定性工具。
func (b *Builder) RegisterTool(tool tools.Tool) *Builder {
	b.entries = append(b.entries, Handler{Slug: tool.Slug, Kind: KindTool, Tool: tool})
	return b
}

// Build 校验并生成 Registry：slug 不能为空且全局唯一，智能体与工具之间也不允许重名。
func (b *Builder) Build() (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler, len(b.entries))}
	for _, h := range b.entries {
		if strings.TrimSpace(h.Slug) == "" || h.Slug != strings.TrimSpace(h.Slug) {
			return nil, xerrors.New(xerrors.CodeInvalidArgument, fmt.Sprintf("invalid slug %q", h.Slug))
		}
		switch h.Kind {
		case KindAgent:
			if h.Agent == nil {
				return nil, xerrors.New(xerrors.CodeInvalidArgument, fmt.Sprintf("agent %s has no descriptor", h.Slug))
			}
		case KindTool:
			if h.Tool.Run == nil {
				return nil, xerrors.New(xerrors.CodeInvalidArgument, fmt.Sprintf("tool %s has no implementation", h.Slug))
			}
		}
		if prev, exists := r.handlers[h.Slug]; exists {
			return nil, xerrors.New(xerrors.CodeConflict,
				fmt.Sprintf("slug %s already registered as %s", h.Slug, prev.Kind),
				xerrors.WithMetadata("slug", h.Slug))
		}
		r.handlers[h.Slug] = h
		if h.Kind == KindAgent {
			r.agents = append(r.agents, h.Slug)
		} else {
			r.tools = append(r.tools, h.Slug)
		}
	}
	return r, nil
}

// Default 使用给定的智能体目录与内置工具构建 Registry。
func Default(catalog agent.Catalog) (*Registry, error) {
	b := NewBuilder().RegisterCatalog(catalog)
	for _, tool := range tools.Builtins() {
		b.RegisterTool(tool)
	}
	return b.Build()
}

// Resolve 查找 slug 对应的处理器。
func (r *Registry) Resolve(slug string) (Handler, bool) {
	h, ok := r.handlers[slug]
	return h, ok
}

// AgentSlugs 按注册顺序返回智能体 slug 的副本。
func (r *Registry) AgentSlugs() []string {
	return append([]string{}, r.agents...)
}

// ToolSlugs 按注册顺序返回工具 slug 的副本。
func (r *Registry) ToolSlugs() []string {
	return append([]string{}, r.tools...)
}

// AllSlugs 返回智能体 slug 后接工具 slug。
func (r *Registry) AllSlugs() []string {
	out := make([]string, 0, len(r.agents)+len(r.tools))
	out = append(out, r.agents...)
	return append(out, r.tools...)
}

// Len 返回已注册的 slug 数量。
func (r *Registry) Len() int { return len(r.handlers) }
