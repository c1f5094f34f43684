package registry

import (
	"strings"
	"sync"
	"testing"

	"WebTool-Platform/internal/agent"
	xerrors "WebTool-Platform/internal/errors"
	"WebTool-Platform/internal/llm"
	"WebTool-Platform/internal/tools"
)

func TestDefaultRegistry(t *testing.T) {
	reg, err := Default(agent.Builtin())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Len() != 38 {
		t.Fatalf("expected 38 slugs, got %d", reg.Len())
	}
	if got := strings.Join(reg.ToolSlugs(), ","); got != "hex-to-rgb,code-beautifier,domain-checker,plagiarism-checker" {
		t.Fatalf("unexpected tool order: %s", got)
	}

	all := reg.AllSlugs()
	agents := reg.AgentSlugs()
	if len(agents) != 34 || len(all) != 38 {
		t.Fatalf("unexpected counts: agents=%d all=%d", len(agents), len(all))
	}
	for i, slug := range agents {
		if all[i] != slug {
			t.Fatalf("all slugs must start with agents in order")
		}
	}
	if all[34] != "hex-to-rgb" {
		t.Fatalf("tools must follow agents, got %s", all[34])
	}

	story, ok := reg.Resolve("story-generator")
	alias, aliasOK := reg.Resolve("ai-story-generator")
	if !ok || !aliasOK || story.Kind != KindAgent || story.Agent != alias.Agent {
		t.Fatalf("aliases must share one descriptor")
	}
	if tool, ok := reg.Resolve("hex-to-rgb"); !ok || tool.Kind != KindTool || tool.Tool.Run == nil {
		t.Fatalf("unexpected tool handler: %+v", tool)
	}
	if _, ok := reg.Resolve("unknown"); ok {
		t.Fatalf("unknown slug should not resolve")
	}
}

func TestRegistryReturnsCopies(t *testing.T) {
	reg, err := Default(agent.Builtin())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slugs := reg.AgentSlugs()
	slugs[0] = "mutated"
	if reg.AgentSlugs()[0] != "story-generator" {
		t.Fatalf("registry state must not be shared with callers")
	}
	all := reg.AllSlugs()
	all[0] = "mutated"
	if reg.AllSlugs()[0] != "story-generator" {
		t.Fatalf("registry state must not be shared with callers")
	}
}

func TestBuildRejectsConflicts(t *testing.T) {
	d := agent.MustDescriptor("Echo", "Echo.", llm.Sampling{}, agent.ShapeText)
	hex := tools.Builtins()[0]

	cases := []struct {
		name    string
		builder *Builder
		code    xerrors.Code
	}{
		{name: "agent vs agent", builder: NewBuilder().RegisterAgent(d, "a", "a"), code: xerrors.CodeConflict},
		{name: "agent vs tool", builder: NewBuilder().RegisterAgent(d, "hex-to-rgb").RegisterTool(hex), code: xerrors.CodeConflict},
		{name: "tool vs tool", builder: NewBuilder().RegisterTool(hex).RegisterTool(hex), code: xerrors.CodeConflict},
		{name: "blank slug", builder: NewBuilder().RegisterAgent(d, " "), code: xerrors.CodeInvalidArgument},
		{name: "padded slug", builder: NewBuilder().RegisterAgent(d, " a"), code: xerrors.CodeInvalidArgument},
		{name: "nil descriptor", builder: NewBuilder().RegisterAgent(nil, "a"), code: xerrors.CodeInvalidArgument},
		{name: "tool without func", builder: NewBuilder().RegisterTool(tools.Tool{Slug: "noop"}), code: xerrors.CodeInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.builder.Build()
			if xerrors.CodeOf(err) != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestRegistryConcurrentReads(t *testing.T) {
	reg, err := Default(agent.Builtin())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, slug := range reg.AllSlugs() {
				if _, ok := reg.Resolve(slug); !ok {
					t.Errorf("slug %s should resolve", slug)
				}
			}
		}()
	}
	wg.Wait()
}
