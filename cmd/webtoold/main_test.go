package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"WebTool-Platform/internal/config"
)

func TestParseContextKeepsOrder(t *testing.T) {
	ctx, err := parseContext([]string{"tone=warm", "audience = kids", "note=a=b"})
	if err != nil {
		t.Fatalf("parse context: %v", err)
	}
	want := "tone: warm\naudience: kids\nnote: a=b"
	if got := ctx.Render(); got != want {
		t.Fatalf("unexpected render:\n%s\nwant\n%s", got, want)
	}
}

func TestParseContextReplacesRepeatedKey(t *testing.T) {
	ctx, err := parseContext([]string{"tone=warm", "audience=kids", "tone=dark"})
	if err != nil {
		t.Fatalf("parse context: %v", err)
	}
	want := "tone: dark\naudience: kids"
	if got := ctx.Render(); got != want {
		t.Fatalf("unexpected render:\n%s\nwant\n%s", got, want)
	}
}

func TestParseContextRejectsMalformedPair(t *testing.T) {
	for _, pair := range []string{"tone", "=warm", " =x"} {
		if _, err := parseContext([]string{pair}); err == nil {
			t.Fatalf("expected error for %q", pair)
		}
	}
	ctx, err := parseContext(nil)
	if err != nil || ctx != nil {
		t.Fatalf("expected nil context, got %v %v", ctx, err)
	}
}

func TestBuildCatalogMergesExternalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agents.yaml")
	content := "- name: Haiku Writer\n  slugs: [haiku-writer]\n  instructions: Write a haiku.\n  preset: creative\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	catalog, err := buildCatalog(config.AgentsConfig{Catalog: path, DisableBuiltin: true})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	slugs := catalog.Slugs()
	if len(slugs) != 1 || slugs[0] != "haiku-writer" {
		t.Fatalf("unexpected slugs: %v", slugs)
	}

	full, err := buildCatalog(config.AgentsConfig{Catalog: path})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	if len(full.Slugs()) != 35 {
		t.Fatalf("expected builtin slugs plus one, got %d", len(full.Slugs()))
	}
}

func TestBuildAlertsSelectsChannels(t *testing.T) {
	if n := buildAlerts(config.AlertingConfig{}).Len(); n != 0 {
		t.Fatalf("expected no notifiers, got %d", n)
	}
	cfg := config.AlertingConfig{LogEvents: true, WebhookURL: "http://127.0.0.1:9/hook", TimeoutSeconds: 1}
	if n := buildAlerts(cfg).Len(); n != 2 {
		t.Fatalf("expected two notifiers, got %d", n)
	}
}

func TestRunCommandExecutesToolOffline(t *testing.T) {
	t.Setenv("WEBTOOL_CONFIG", "")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("GEMINI_API_KEY", "")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	args := []string{"webtoold", "--env-file", "", "run", "--slug", "hex-to-rgb", "--prompt", "#FF0000"}
	if err := app.RunContext(context.Background(), args); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "rgb(255, 0, 0)" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestListCommandPrintsEverySlug(t *testing.T) {
	t.Setenv("WEBTOOL_CONFIG", "")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	if err := app.RunContext(context.Background(), []string{"webtoold", "--env-file", "", "list"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if !strings.HasPrefix(lines[0], "agent\t") || !strings.HasPrefix(lines[len(lines)-1], "tool\t") {
		t.Fatalf("unexpected listing:\n%s", out.String())
	}
}
