// Package prompt renders the suggestion prompt sent to the model backend.
package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/knightmare-26/jira-cli/internal/promptctx"
)

const builtinTemplate = "templates/suggest.tmpl"

//go:embed templates/*.tmpl
var builtinTemplates embed.FS

// Data is the template input.
type Data struct {
	// Kind is the context variant tag.
	Kind promptctx.Kind
	// Context is the code change.
	Context *promptctx.Context
	// Candidates are existing issues found by the similarity search.
	Candidates []promptctx.CandidateIssue
}

// Renderer renders the suggestion prompt from the builtin template or a user-provided one.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the template at path, or the builtin template when path is empty.
func NewRenderer(path string) (*Renderer, error) {
	name := builtinTemplate
	var raw []byte
	var err error
	if strings.TrimSpace(path) != "" {
		name = path
		// #nosec G304 -- path is operator supplied.
		raw, err = os.ReadFile(path)
	} else {
		raw, err = builtinTemplates.ReadFile(builtinTemplate)
	}
	if err != nil {
		return nil, fmt.Errorf("read prompt template %q: %w", name, err)
	}

	tmpl, err := template.New(name).Funcs(template.FuncMap{"json": toJSON}).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %q: %w", name, err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// MustBuiltin returns a Renderer for the embedded template. It panics only if the
// embedded template is broken.
func MustBuiltin() *Renderer {
	r, err := NewRenderer("")
	if err != nil {
		panic(err)
	}
	return r
}

// Render builds the prompt for a context and its candidate issues.
func (r *Renderer) Render(ctx *promptctx.Context, candidates []promptctx.CandidateIssue) (string, error) {
	if ctx.Kind() == "" {
		return "", fmt.Errorf("render prompt: context is empty")
	}
	var buf bytes.Buffer
	data := Data{Kind: ctx.Kind(), Context: ctx, Candidates: candidates}
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

func toJSON(v any) (string, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
