package webtool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DefaultHTTPTimeout is used by clients created without a custom http.Client.
// Agent calls may take up to the server side model timeout, so it is longer
// than a typical REST timeout.
const DefaultHTTPTimeout = 90 * time.Second

// DefaultBasePath is the route prefix the server mounts its endpoints under.
const DefaultBasePath = "/api/v1/agents"

// Client wraps the HTTP interactions with the Web Tool Platform API.
type Client struct {
	baseURL    *url.URL
	basePath   string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the http.Client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBasePath overrides the route prefix.
func WithBasePath(base string) Option {
	return func(c *Client) {
		if base = strings.Trim(base, "/"); base != "" {
			c.basePath = "/" + base
		}
	}
}

// Settings are optional per-call sampling overrides.
type Settings struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// Field is one user_context entry.
type Field struct {
	Key   string
	Value any
}

// Context is an ordered user_context object. The server renders entries in
// the order they are sent.
type Context []Field

// MarshalJSON encodes the fields as a JSON object preserving order.
func (c Context) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encode context %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ProcessRequest is the body of a process call.
type ProcessRequest struct {
	Prompt      string    `json:"prompt"`
	Settings    *Settings `json:"settings,omitempty"`
	UserContext Context   `json:"user_context,omitempty"`
}

// Usage reports token counts; any counter may be absent.
type Usage struct {
	PromptTokens     *int `json:"prompt_tokens,omitempty"`
	CompletionTokens *int `json:"completion_tokens,omitempty"`
	TotalTokens      *int `json:"total_tokens,omitempty"`
}

// Response is a successful process result.
type Response struct {
	Status      string `json:"status"`
	ExecutionID string `json:"execution_id"`
	Content     string `json:"content"`
	Usage       *Usage `json:"usage,omitempty"`
}

// Lines splits list shaped content into its items.
func (r *Response) Lines() []string {
	var out []string
	for _, line := range strings.Split(r.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Listing enumerates every slug the server routes.
type Listing struct {
	Agents []string `json:"agents"`
	Tools  []string `json:"tools"`
	All    []string `json:"all"`
}

// APIError represents a non-2xx response from the server.
type APIError struct {
	StatusCode  int
	Message     string `json:"message"`
	ExecutionID string `json:"execution_id,omitempty"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.ExecutionID != "" {
		return fmt.Sprintf("webtool api error (%d): %s [execution %s]", e.StatusCode, e.Message, e.ExecutionID)
	}
	return fmt.Sprintf("webtool api error (%d): %s", e.StatusCode, e.Message)
}

// NewClient instantiates a client for the API rooted at rawURL.
func NewClient(rawURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", rawURL)
	}
	c := &Client{
		baseURL:    parsed,
		basePath:   DefaultBasePath,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// List returns agents, tools and their concatenation.
func (c *Client) List(ctx context.Context) (Listing, error) {
	var listing Listing
	if err := c.get(ctx, c.basePath+"/list", &listing); err != nil {
		return Listing{}, err
	}
	return listing, nil
}

// Agents returns the agent slugs.
func (c *Client) Agents(ctx context.Context) ([]string, error) {
	var slugs []string
	if err := c.get(ctx, c.basePath+"/agents", &slugs); err != nil {
		return nil, err
	}
	return slugs, nil
}

// Tools returns the tool slugs.
func (c *Client) Tools(ctx context.Context) ([]string, error) {
	var slugs []string
	if err := c.get(ctx, c.basePath+"/tools", &slugs); err != nil {
		return nil, err
	}
	return slugs, nil
}

// Process runs the agent or tool registered under slug.
func (c *Client) Process(ctx context.Context, slug string, req ProcessRequest) (*Response, error) {
	var resp Response
	if err := c.post(ctx, c.basePath+"/process/"+slug, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health reports whether the server answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", &body); err != nil {
		return err
	}
	if body.Status != "healthy" {
		return fmt.Errorf("webtool: unexpected health status %q", body.Status)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	rel := &url.URL{Path: path.Join(c.baseURL.Path, endpoint)}
	u := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := APIError{StatusCode: resp.StatusCode}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		_ = json.Unmarshal(data, &apiErr)
		if apiErr.Message == "" {
			apiErr.Message = string(bytes.TrimSpace(data))
		}
		return &apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
