package schema

import (
	"encoding/json"
	"strings"
	"testing"

	xerrors "WebTool-Platform/internal/errors"
	"WebTool-Platform/internal/llm"
)

func TestProcessRequestValidate(t *testing.T) {
	cases := []struct {
		name  string
		req   ProcessRequest
		field string
	}{
		{name: "empty prompt", req: ProcessRequest{}, field: "prompt"},
		{name: "too long", req: ProcessRequest{Prompt: strings.Repeat("a", MaxPromptLength+1)}, field: "prompt"},
		{name: "temperature", req: ProcessRequest{Prompt: "x", Settings: &Settings{Temperature: llm.Float(2.1)}}, field: "settings.temperature"},
		{name: "negative temperature", req: ProcessRequest{Prompt: "x", Settings: &Settings{Temperature: llm.Float(-0.1)}}, field: "settings.temperature"},
		{name: "top_p", req: ProcessRequest{Prompt: "x", Settings: &Settings{TopP: llm.Float(1.5)}}, field: "settings.top_p"},
		{name: "max tokens", req: ProcessRequest{Prompt: "x", Settings: &Settings{MaxTokens: llm.Int(0)}}, field: "settings.max_tokens"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if xerrors.CodeOf(err) != CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := xerrors.MetadataOf(err, "field"); got != tc.field {
				t.Fatalf("unexpected field: %q want %q", got, tc.field)
			}
		})
	}
}

func TestProcessRequestValidateAccepts(t *testing.T) {
	valid := []ProcessRequest{
		{Prompt: "x"},
		{Prompt: " "},
		{Prompt: strings.Repeat("é", MaxPromptLength)},
		{Prompt: "x", Settings: &Settings{Temperature: llm.Float(0), TopP: llm.Float(1), MaxTokens: llm.Int(1)}},
		{Prompt: "x", Settings: &Settings{Temperature: llm.Float(2)}},
	}
	for _, req := range valid {
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestUserContextPreservesOrder(t *testing.T) {
	var req ProcessRequest
	body := `{"prompt":"write a greeting","user_context":{"tone":"formal","audience":"board","tone":"friendly","count":3,"tags":["a", "b"],"extra":null,"nested":{"k": true}}}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "tone: friendly\naudience: board\ncount: 3\ntags: [\"a\",\"b\"]\nextra: null\nnested: {\"k\":true}"
	if got := req.UserContext.Render(); got != want {
		t.Fatalf("unexpected render:\n%s\nwant\n%s", got, want)
	}

	encoded, err := json.Marshal(req.UserContext)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.HasPrefix(string(encoded), `{"tone":"friendly","audience":"board"`) {
		t.Fatalf("marshal should keep order: %s", encoded)
	}
}

func TestUserContextSetReplacesInPlace(t *testing.T) {
	var ctx UserContext
	ctx.Set(StringEntry("tone", "formal"))
	ctx.Set(StringEntry("audience", "board"))
	ctx.Set(StringEntry("tone", "friendly"))

	want := "tone: friendly\naudience: board"
	if got := ctx.Render(); got != want {
		t.Fatalf("unexpected render:\n%s\nwant\n%s", got, want)
	}
}

func TestUserContextRejectsNonObject(t *testing.T) {
	var req ProcessRequest
	if err := json.Unmarshal([]byte(`{"prompt":"x","user_context":["a"]}`), &req); err == nil {
		t.Fatalf("expected error for array context")
	}
	if err := json.Unmarshal([]byte(`{"prompt":"x","user_context":null}`), &req); err != nil {
		t.Fatalf("null context should be accepted: %v", err)
	}
	if req.UserContext != nil {
		t.Fatalf("null context should decode to nil")
	}
}

func TestResponseOmitsMissingUsage(t *testing.T) {
	data, _ := json.Marshal(Success("id-1", "rgb(0, 0, 0)", nil))
	if strings.Contains(string(data), "usage") {
		t.Fatalf("usage must be omitted: %s", data)
	}

	usage := UsageFrom(&llm.Usage{CompletionTokens: llm.Int(4)})
	data, _ = json.Marshal(Success("id-2", "hi", usage))
	if !strings.Contains(string(data), `"usage":{"completion_tokens":4}`) {
		t.Fatalf("partial usage not rendered: %s", data)
	}
	if UsageFrom(&llm.Usage{}) != nil || UsageFrom(nil) != nil {
		t.Fatalf("empty usage should convert to nil")
	}

	data, _ = json.Marshal(Failure("agent execution failed", ""))
	if string(data) != `{"status":"error","message":"agent execution failed"}` {
		t.Fatalf("unexpected error envelope: %s", data)
	}
}

func TestSettingsSamplingCopies(t *testing.T) {
	s := &Settings{Temperature: llm.Float(0.3)}
	sampling := s.Sampling()
	*sampling.Temperature = 1
	if *s.Temperature != 0.3 {
		t.Fatalf("sampling must not alias settings")
	}
	var none *Settings
	if !none.Sampling().IsZero() {
		t.Fatalf("nil settings should produce empty sampling")
	}
}
