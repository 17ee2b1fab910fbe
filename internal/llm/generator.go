package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Generator wraps a Backend and reduces every failure to "no document".
type Generator struct {
	backend Backend
	logger  *slog.Logger
}

// NewGenerator returns a Generator using backend.
func NewGenerator(backend Backend, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{backend: backend, logger: logger}
}

// Generate asks the backend for suggestions and returns the reply as a JSON document,
// or nil when the backend fails or the reply is not JSON. Errors are logged, never returned.
func (g *Generator) Generate(ctx context.Context, prompt string) json.RawMessage {
	reply, err := g.backend.Complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("model backend failed", "error", err)
		return nil
	}
	doc := Extract(reply)
	if doc == nil {
		g.logger.Warn("model reply is not valid JSON", "reply", truncate(reply, 200))
		return nil
	}
	return doc
}

// Extract pulls the JSON document out of a model reply: it trims whitespace, strips a
// Markdown code fence, and unwraps the {"response": "..."} envelope the gemini CLI emits.
func Extract(reply string) json.RawMessage {
	text := stripFence(strings.TrimSpace(reply))
	if text == "" || !json.Valid([]byte(text)) {
		return nil
	}

	var envelope struct {
		Response *string         `json:"response"`
		Actions  json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && envelope.Response != nil && envelope.Actions == nil {
		return Extract(*envelope.Response)
	}
	return json.RawMessage(text)
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// drop the info string, e.g. "json"
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
