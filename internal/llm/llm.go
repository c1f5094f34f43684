package llm

import "context"

// Sampling 描述一次调用的采样参数，字段为 nil 表示沿用服务端默认值。
type Sampling struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Clone 返回一份不共享指针的副本。
func (s Sampling) Clone() Sampling {
	var out Sampling
	if s.Temperature != nil {
		v := *s.Temperature
		out.Temperature = &v
	}
	if s.TopP != nil {
		v := *s.TopP
		out.TopP = &v
	}
	if s.MaxTokens != nil {
		v := *s.MaxTokens
		out.MaxTokens = &v
	}
	return out
}

// Merge 用 override 中出现的字段覆盖当前值，返回新的参数，不修改接收者。
func (s Sampling) Merge(override Sampling) Sampling {
	out := s.Clone()
	o := override.Clone()
	if o.Temperature != nil {
		out.Temperature = o.Temperature
	}
	if o.TopP != nil {
		out.TopP = o.TopP
	}
	if o.MaxTokens != nil {
		out.MaxTokens = o.MaxTokens
	}
	return out
}

// IsZero 判断是否没有任何字段被设置。
func (s Sampling) IsZero() bool {
	return s.Temperature == nil && s.TopP == nil && s.MaxTokens == nil
}

// Request 描述发送给大模型的一次补全请求。
type Request struct {
	// Instructions 作为系统提示词发送。
	Instructions string
	// Input 是已经拼接好上下文的用户输入。
	Input    string
	Sampling Sampling
}

// Usage 记录模型返回的 token 统计，每个计数都可能缺失。
type Usage struct {
	PromptTokens     *int
	CompletionTokens *int
	TotalTokens      *int
}

// Empty 判断是否没有任何计数。
func (u *Usage) Empty() bool {
	return u == nil || (u.PromptTokens == nil && u.CompletionTokens == nil && u.TotalTokens == nil)
}

// Response 是大模型返回的文本结果。
type Response struct {
	Text  string
	Usage *Usage
}

// Client 定义了调用大模型的统一接口。
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Float 返回指向 v 的指针，便于构造 Sampling。
func Float(v float64) *float64 { return &v }

// Int 返回指向 v 的指针。
func Int(v int) *int { return &v }

// CountUsage 将非零计数转换为 Usage；三个计数全部为零时返回 nil。
func CountUsage(prompt, completion, total int) *Usage {
	if prompt == 0 && completion == 0 && total == 0 {
		return nil
	}
	u := &Usage{}
	if prompt > 0 {
		u.PromptTokens = Int(prompt)
	}
	if completion > 0 {
		u.CompletionTokens = Int(completion)
	}
	if total > 0 {
		u.TotalTokens = Int(total)
	} else if prompt > 0 && completion > 0 {
		u.TotalTokens = Int(prompt + completion)
	}
	return u
}
