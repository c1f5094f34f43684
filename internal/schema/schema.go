package schema

import (
	"fmt"
	"unicode/utf8"

	xerrors "WebTool-Platform/internal/errors"
	"WebTool-Platform/internal/llm"
)

const (
	// CodeValidation 表示请求体未通过校验。
	CodeValidation xerrors.Code = "VALIDATION_FAILED"

	// MaxPromptLength 是 prompt 允许的最大字符数。
	MaxPromptLength = 50000

	StatusSuccess = "success"
	StatusError   = "error"
)

func init() {
	xerrors.Register(CodeValidation, xerrors.Attributes{
		Message:  "request validation failed",
		Severity: xerrors.SeverityInfo,
	})
}

// Settings 是调用方可选的采样参数覆盖，每个字段独立可选。
type Settings struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// Sampling 转换为模型层的采样参数。
func (s *Settings) Sampling() llm.Sampling {
	if s == nil {
		return llm.Sampling{}
	}
	return llm.Sampling{Temperature: s.Temperature, TopP: s.TopP, MaxTokens: s.MaxTokens}.Clone()
}

// Validate 检查各字段的取值范围。
func (s *Settings) Validate() error {
	if s == nil {
		return nil
	}
	return ValidateSampling(s.Sampling(), "settings.")
}

// ValidateSampling 校验 temperature ∈ [0,2]、top_p ∈ [0,1]、max_tokens > 0。
func ValidateSampling(s llm.Sampling, prefix string) error {
	if t := s.Temperature; t != nil && (*t < 0 || *t > 2) {
		return invalidField(prefix+"temperature", "must be between 0 and 2")
	}
	if p := s.TopP; p != nil && (*p < 0 || *p > 1) {
		return invalidField(prefix+"top_p", "must be between 0 and 1")
	}
	if m := s.MaxTokens; m != nil && *m <= 0 {
		return invalidField(prefix+"max_tokens", "must be greater than 0")
	}
	return nil
}

// ProcessRequest 是 /process/{slug} 的请求体。
type ProcessRequest struct {
	Prompt      string      `json:"prompt"`
	Settings    *Settings   `json:"settings,omitempty"`
	UserContext UserContext `json:"user_context,omitempty"`
}

// Validate 在任何处理器执行之前校验请求。
func (r *ProcessRequest) Validate() error {
	n := utf8.RuneCountInString(r.Prompt)
	if n == 0 {
		return invalidField("prompt", "must not be empty")
	}
	if n > MaxPromptLength {
		return invalidField("prompt", fmt.Sprintf("must be at most %d characters", MaxPromptLength))
	}
	return r.Settings.Validate()
}

func invalidField(field, reason string) error {
	return xerrors.New(CodeValidation, fmt.Sprintf("%s %s", field, reason), xerrors.WithMetadata("field", field))
}

// Usage 是响应中的 token 统计，缺失的计数不会输出。
type Usage struct {
	PromptTokens     *int `json:"prompt_tokens,omitempty"`
	CompletionTokens *int `json:"completion_tokens,omitempty"`
	TotalTokens      *int `json:"total_tokens,omitempty"`
}

// UsageFrom 从模型层统计转换，没有任何计数时返回 nil。
func UsageFrom(u *llm.Usage) *Usage {
	if u.Empty() {
		return nil
	}
	return &Usage{PromptTokens: u.PromptTokens, CompletionTokens: u.CompletionTokens, TotalTokens: u.TotalTokens}
}

// Response 是成功时的统一响应。
type Response struct {
	Status      string `json:"status"`
	ExecutionID string `json:"execution_id"`
	Content     string `json:"content"`
	Usage       *Usage `json:"usage,omitempty"`
}

// Success 构造成功响应。
func Success(executionID, content string, usage *Usage) *Response {
	return &Response{Status: StatusSuccess, ExecutionID: executionID, Content: content, Usage: usage}
}

// ErrorResponse 是失败时的统一响应。
type ErrorResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	ExecutionID string `json:"execution_id,omitempty"`
}

// Failure 构造错误响应。
func Failure(message, executionID string) *ErrorResponse {
	return &ErrorResponse{Status: StatusError, Message: message, ExecutionID: executionID}
}

// Listing 是 /list 的响应。
type Listing struct {
	Agents []string `json:"agents"`
	Tools  []string `json:"tools"`
	All    []string `json:"all"`
}
