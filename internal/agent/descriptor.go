package agent

import (
	"errors"
	"fmt"
	"strings"

	"WebTool-Platform/internal/llm"
	"WebTool-Platform/internal/schema"
)

// OutputShape 描述智能体期望的输出形态。
type OutputShape string

const (
	ShapeText OutputShape = "free_text"
	ShapeList OutputShape = "list"
)

// listDirective 追加在 list 形态智能体的指令之后，约定每行一个条目。
const listDirective = "Return the result as a plain list with exactly one item per line. " +
	"Do not number the items and do not add any introduction or closing remarks."

// 预置的采样参数。
var (
	Creative = llm.Sampling{Temperature: llm.Float(0.9), TopP: llm.Float(0.95)}
	Balanced = llm.Sampling{Temperature: llm.Float(0.5), TopP: llm.Float(0.85)}
	Precise  = llm.Sampling{Temperature: llm.Float(0.1), TopP: llm.Float(0.5)}
)

// Preset 根据名称返回预置采样参数。
func Preset(name string) (llm.Sampling, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "creative":
		return Creative.Clone(), true
	case "balanced":
		return Balanced.Clone(), true
	case "precise":
		return Precise.Clone(), true
	case "", "default", "none":
		return llm.Sampling{}, true
	default:
		return llm.Sampling{}, false
	}
}

// Descriptor 是不可变的智能体定义：名称、系统指令、默认采样参数和输出形态。
// 多个 slug 可以指向同一个 Descriptor。
type Descriptor struct {
	name         string
	instructions string
	sampling     llm.Sampling
	shape        OutputShape
}

// NewDescriptor 校验参数并创建 Descriptor。
func NewDescriptor(name, instructions string, sampling llm.Sampling, shape OutputShape) (*Descriptor, error) {
	name = strings.TrimSpace(name)
	instructions = strings.TrimSpace(instructions)
	if name == "" {
		return nil, errors.New("智能体名称不能为空")
	}
	if instructions == "" {
		return nil, fmt.Errorf("智能体 %s 的指令不能为空", name)
	}
	if err := schema.ValidateSampling(sampling, ""); err != nil {
		return nil, fmt.Errorf("智能体 %s 的采样参数无效: %w", name, err)
	}
	switch shape {
	case "":
		shape = ShapeText
	case ShapeText, ShapeList:
	default:
		return nil, fmt.Errorf("智能体 %s 的输出形态无效: %s", name, shape)
	}
	return &Descriptor{
		name:         name,
		instructions: instructions,
		sampling:     sampling.Clone(),
		shape:        shape,
	}, nil
}

// MustDescriptor 与 NewDescriptor 相同，但在参数无效时 panic，仅用于内置目录。
func MustDescriptor(name, instructions string, sampling llm.Sampling, shape OutputShape) *Descriptor {
	d, err := NewDescriptor(name, instructions, sampling, shape)
	if err != nil {
		panic(err)
	}
	return d
}

// Name 返回展示名称。
func (d *Descriptor) Name() string { return d.name }

// Instructions 返回原始指令。
func (d *Descriptor) Instructions() string { return d.instructions }

// Sampling 返回默认采样参数的副本。
func (d *Descriptor) Sampling() llm.Sampling { return d.sampling.Clone() }

// OutputShape 返回输出形态。
func (d *Descriptor) OutputShape() OutputShape { return d.shape }

// SystemPrompt 返回实际发送给模型的系统提示词。
func (d *Descriptor) SystemPrompt() string {
	if d.shape == ShapeList {
		return d.instructions + "\n\n" + listDirective
	}
	return d.instructions
}
