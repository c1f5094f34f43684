package webtool

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestListDecodesSlugs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/agents/list" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Listing{Agents: []string{"poem-generator"}, Tools: []string{"hex-to-rgb"}, All: []string{"poem-generator", "hex-to-rgb"}})
	})

	listing, err := client.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listing.All) != 2 || listing.Tools[0] != "hex-to-rgb" {
		t.Fatalf("unexpected listing: %+v", listing)
	}
}

func TestProcessSendsOrderedContext(t *testing.T) {
	var raw string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tools/v2/process/slogan-generator" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		raw = string(data)
		_ = json.NewEncoder(w).Encode(Response{Status: "success", ExecutionID: "exec-1", Content: "Fresh daily\nBaked with love\n"})
	}, WithBasePath("/tools/v2/"))

	temp := 0.7
	resp, err := client.Process(context.Background(), "slogan-generator", ProcessRequest{
		Prompt:      "bakery",
		Settings:    &Settings{Temperature: &temp},
		UserContext: Context{{Key: "tone", Value: "warm"}, {Key: "count", Value: 2}},
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want := `{"prompt":"bakery","settings":{"temperature":0.7},"user_context":{"tone":"warm","count":2}}`
	if raw != want {
		t.Fatalf("unexpected body:\n%s\nwant\n%s", raw, want)
	}
	if lines := resp.Lines(); len(lines) != 2 || lines[1] != "Baked with love" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestProcessReturnsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","message":"agent execution failed","execution_id":"exec-9"}`))
	})

	_, err := client.Process(context.Background(), "essay-writer", ProcessRequest{Prompt: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError || apiErr.Message != "agent execution failed" || apiErr.ExecutionID != "exec-9" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	if _, err := NewClient("localhost:8000"); err == nil {
		t.Fatalf("expected error for url without scheme")
	}
}
