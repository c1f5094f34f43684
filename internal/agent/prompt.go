package agent

import (
	"bytes"
	"encoding/json"
	"strings"

	"WebTool-Platform/internal/schema"
)

// ComposeInput 拼接发送给模型的用户输入。
// 有上下文时输出 "Context:\n<key: value>\n\nRequest:\n<prompt>"，否则原样返回 prompt。
func ComposeInput(prompt string, userContext schema.UserContext) string {
	if len(userContext) == 0 {
		return prompt
	}
	var b strings.Builder
	b.WriteString("Context:\n")
	b.WriteString(userContext.Render())
	b.WriteString("\n\nRequest:\n")
	b.WriteString(prompt)
	return b.String()
}

// normalizeList 把 JSON 数组形式的回答展开为每行一个条目，其他文本原样返回。
func normalizeList(text string) string {
	body := stripFence(strings.TrimSpace(text))
	if !strings.HasPrefix(body, "[") {
		return text
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return text
	}
	lines := make([]string, 0, len(items))
	for _, raw := range items {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			lines = append(lines, strings.TrimSpace(s))
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			lines = append(lines, string(raw))
			continue
		}
		lines = append(lines, buf.String())
	}
	return strings.Join(lines, "\n")
}

// stripFence 去掉 ```json ... ``` 形式的代码块包裹。
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
