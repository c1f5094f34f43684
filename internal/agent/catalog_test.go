package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"WebTool-Platform/internal/llm"
)

func TestBuiltinCatalog(t *testing.T) {
	catalog := Builtin()
	if len(catalog) != 31 {
		t.Fatalf("expected 31 agents, got %d", len(catalog))
	}
	slugs := catalog.Slugs()
	if len(slugs) != 34 {
		t.Fatalf("expected 34 slugs, got %d", len(slugs))
	}
	if slugs[0] != "story-generator" || slugs[1] != "ai-story-generator" || slugs[len(slugs)-1] != "sentence-generator" {
		t.Fatalf("unexpected slug order: %v", slugs)
	}

	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		if seen[slug] {
			t.Fatalf("duplicate slug %s", slug)
		}
		seen[slug] = true
	}

	aliases := map[string]string{}
	for _, b := range catalog {
		if len(b.Slugs) > 1 {
			aliases[b.Slugs[1]] = b.Descriptor.Name()
		}
	}
	want := map[string]string{
		"ai-story-generator":  "Story Generator",
		"ai-content-improver": "Article Rewriter",
		"meta-tag-generator":  "Meta Description Generator",
	}
	for alias, name := range want {
		if aliases[alias] != name {
			t.Fatalf("alias %s should point at %s, got %q", alias, name, aliases[alias])
		}
	}
}

func TestBuiltinListAgents(t *testing.T) {
	lists := map[string]bool{}
	for _, b := range Builtin() {
		if b.Descriptor.OutputShape() == ShapeList {
			lists[b.Slugs[0]] = true
		}
	}
	for _, slug := range []string{"slogan-generator", "business-name-generator", "book-title-generator"} {
		if !lists[slug] {
			t.Fatalf("%s should produce a list", slug)
		}
	}
	if len(lists) != 3 {
		t.Fatalf("unexpected list agents: %v", lists)
	}
}

func TestNewDescriptorValidates(t *testing.T) {
	cases := []struct {
		name     string
		dname    string
		instr    string
		sampling llm.Sampling
		shape    OutputShape
	}{
		{name: "blank name", dname: " ", instr: "x"},
		{name: "blank instructions", dname: "A", instr: ""},
		{name: "temperature", dname: "A", instr: "x", sampling: llm.Sampling{Temperature: llm.Float(2.5)}},
		{name: "top_p", dname: "A", instr: "x", sampling: llm.Sampling{TopP: llm.Float(-1)}},
		{name: "max tokens", dname: "A", instr: "x", sampling: llm.Sampling{MaxTokens: llm.Int(0)}},
		{name: "shape", dname: "A", instr: "x", shape: "table"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewDescriptor(tc.dname, tc.instr, tc.sampling, tc.shape); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	d, err := NewDescriptor("A", "x", llm.Sampling{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.OutputShape() != ShapeText || d.SystemPrompt() != "x" {
		t.Fatalf("unexpected defaults: %s %q", d.OutputShape(), d.SystemPrompt())
	}
}

func TestLoadCatalogYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	content := `
- name: Haiku Writer
  slugs: [haiku-writer, haiku]
  instructions: Write a haiku.
  preset: creative
  max_tokens: 64
- name: Tag Lister
  slugs: [tag-lister]
  instructions: List tags.
  temperature: 0.3
  output: list
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(catalog.Slugs(), ","); got != "haiku-writer,haiku,tag-lister" {
		t.Fatalf("unexpected slugs: %s", got)
	}
	haiku := catalog[0].Descriptor.Sampling()
	if *haiku.Temperature != 0.9 || *haiku.TopP != 0.95 || *haiku.MaxTokens != 64 {
		t.Fatalf("unexpected sampling: %+v", haiku)
	}
	tags := catalog[1].Descriptor
	if tags.OutputShape() != ShapeList || *tags.Sampling().Temperature != 0.3 || tags.Sampling().TopP != nil {
		t.Fatalf("unexpected descriptor: %+v", tags)
	}
}

func TestLoadCatalogJSONAndErrors(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "agents.json")
	if err := os.WriteFile(valid, []byte(`[{"name":"Greeter","slugs":["greeter"],"instructions":"Greet.","preset":"precise"}]`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	catalog, err := LoadCatalog(valid)
	if err != nil || len(catalog) != 1 {
		t.Fatalf("unexpected result: %v %v", catalog, err)
	}

	invalid := map[string]string{
		"unknown-preset.json": `[{"name":"A","slugs":["a"],"instructions":"x","preset":"wild"}]`,
		"no-slugs.json":       `[{"name":"A","instructions":"x"}]`,
		"bad-range.json":      `[{"name":"A","slugs":["a"],"instructions":"x","top_p":3}]`,
		"malformed.json":      `{`,
	}
	for name, body := range invalid {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadCatalog(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	empty, err := LoadCatalog("")
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty path should yield an empty catalog")
	}
	if _, err := LoadCatalog(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestComposeInputPreservesPromptVerbatim(t *testing.T) {
	if got := ComposeInput("  spaced  ", nil); got != "  spaced  " {
		t.Fatalf("prompt must be forwarded verbatim: %q", got)
	}
}
