package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"WebTool-Platform/internal/llm"
)

// CatalogEntry 是目录文件中的一条智能体定义。
type CatalogEntry struct {
	Name         string   `json:"name" yaml:"name"`
	Slugs        []string `json:"slugs" yaml:"slugs"`
	Instructions string   `json:"instructions" yaml:"instructions"`
	Preset       string   `json:"preset,omitempty" yaml:"preset,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP         *float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	MaxTokens    *int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Output       string   `json:"output,omitempty" yaml:"output,omitempty"`
}

// Binding 将条目转换为绑定；preset 先生效，单独给出的采样字段覆盖 preset。
func (e CatalogEntry) Binding() (Binding, error) {
	if len(e.Slugs) == 0 {
		return Binding{}, fmt.Errorf("智能体 %s 未声明任何 slug", e.Name)
	}
	sampling, ok := Preset(e.Preset)
	if !ok {
		return Binding{}, fmt.Errorf("智能体 %s 的预置参数未知: %s", e.Name, e.Preset)
	}
	sampling = sampling.Merge(llm.Sampling{Temperature: e.Temperature, TopP: e.TopP, MaxTokens: e.MaxTokens})

	d, err := NewDescriptor(e.Name, e.Instructions, sampling, OutputShape(strings.ToLower(strings.TrimSpace(e.Output))))
	if err != nil {
		return Binding{}, err
	}
	slugs := make([]string, 0, len(e.Slugs))
	for _, slug := range e.Slugs {
		slugs = append(slugs, strings.TrimSpace(slug))
	}
	return Binding{Slugs: slugs, Descriptor: d}, nil
}

// LoadCatalog 从 YAML 或 JSON 文件加载智能体目录，路径为空时返回空目录。
func LoadCatalog(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取智能体目录失败: %w", err)
	}

	var entries []CatalogEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &entries)
	default:
		err = json.Unmarshal(content, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("解析智能体目录失败: %w", err)
	}

	catalog := make(Catalog, 0, len(entries))
	for i, entry := range entries {
		binding, err := entry.Binding()
		if err != nil {
			return nil, fmt.Errorf("智能体目录第 %d 项无效: %w", i+1, err)
		}
		catalog = append(catalog, binding)
	}
	return catalog, nil
}
