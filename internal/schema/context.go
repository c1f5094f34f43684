package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ContextEntry 是 user_context 中的一个键值对，值保留原始 JSON。
type ContextEntry struct {
	Key   string
	Value json.RawMessage
}

// UserContext 是保留请求中键顺序的 JSON 对象。
// 重复的键会在首次出现的位置被后面的值覆盖。
type UserContext []ContextEntry

// StringEntry 构造字符串值的键值对。
func StringEntry(key, value string) ContextEntry {
	raw, _ := json.Marshal(value)
	return ContextEntry{Key: key, Value: raw}
}

// Set 写入一个键值对，已存在的 key 原位替换值，保持首次出现的位置。
func (c *UserContext) Set(entry ContextEntry) {
	for i := range *c {
		if (*c)[i].Key == entry.Key {
			(*c)[i].Value = entry.Value
			return
		}
	}
	*c = append(*c, entry)
}

// UnmarshalJSON 按出现顺序解析对象。
func (c *UserContext) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*c = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("user_context must be a JSON object")
	}

	entries := UserContext{}
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("user_context: unexpected key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("user_context.%s: %w", key, err)
		}
		if i, seen := index[key]; seen {
			entries[i].Value = raw
			continue
		}
		index[key] = len(entries)
		entries = append(entries, ContextEntry{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = entries
	return nil
}

// MarshalJSON 按保存的顺序输出对象。
func (c UserContext) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(entry.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		buf.Write(entry.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Render 将上下文渲染为 "key: value" 行，字符串值不带引号，其他值输出紧凑 JSON。
func (c UserContext) Render() string {
	lines := make([]string, 0, len(c))
	for _, entry := range c {
		lines = append(lines, entry.Key+": "+renderValue(entry.Value))
	}
	return strings.Join(lines, "\n")
}

func renderValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
