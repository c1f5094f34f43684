// Package echo provides an offline llm.Client for local development and
// demos. It never reaches the network and reports no usage.
package echo

import (
	"context"
	"fmt"
	"strings"

	"WebTool-Platform/internal/llm"
)

// Client answers with the last non-empty line of the input behind a prefix.
type Client struct {
	Prefix string
}

// NewClient returns an echo client; an empty prefix falls back to "Echo:".
func NewClient(prefix string) *Client {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Echo:"
	}
	return &Client{Prefix: prefix}
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lines := strings.Split(req.Input, "\n")
	last := "<empty prompt>"
	for i := len(lines) - 1; i >= 0; i-- {
		if candidate := strings.TrimSpace(lines[i]); candidate != "" {
			last = candidate
			break
		}
	}
	return &llm.Response{Text: fmt.Sprintf("%s %s", c.Prefix, last)}, nil
}
