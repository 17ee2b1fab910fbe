package jira

import (
	"encoding/json"
	"strings"
)

// DescriptionToPlainText flattens an Atlassian Document Format value to text, one line per
// block. Plain JSON strings are returned as-is.
func DescriptionToPlainText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var node adfNode
	if err := json.Unmarshal(raw, &node); err != nil || node.Type != "doc" {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return string(raw)
	}

	var lines []string
	for _, block := range node.Content {
		if text := block.text(); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []adfNode `json:"content,omitempty"`
}

func (n adfNode) text() string {
	if n.Text != "" {
		return n.Text
	}
	var b strings.Builder
	for _, child := range n.Content {
		b.WriteString(child.text())
	}
	return b.String()
}

// PlainTextToADF wraps text into an ADF document with one paragraph per line.
func PlainTextToADF(text string) map[string]any {
	var content []any
	for _, line := range strings.Split(text, "\n") {
		para := map[string]any{"type": "paragraph", "content": []any{}}
		if line != "" {
			para["content"] = []any{map[string]any{"type": "text", "text": line}}
		}
		content = append(content, para)
	}
	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": content,
	}
}
