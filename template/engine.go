// Package template renders a prompt snapshot's system prompt and user
// template with Go text/template.
package template

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/weftlabs/weft/core"
)

// ErrRenderFailed marks template parse or execution failures.
var ErrRenderFailed = errors.New("render failed")

// Input holds the variable values substituted into a snapshot's templates.
type Input map[string]interface{}

// Rendered is the result of rendering a snapshot: the final message pair
// ready to send to a model, plus the input it was rendered with.
type Rendered struct {
	System string `json:"system"`
	User   string `json:"user"`
	Input  Input  `json:"input,omitempty"`
}

// Engine renders snapshot templates using text/template with custom functions.
type Engine struct {
	leftDelim  string
	rightDelim string
	funcMap    template.FuncMap
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithDelims sets custom delimiters (default "{{" and "}}").
func WithDelims(left, right string) EngineOption {
	return func(e *Engine) {
		e.leftDelim = left
		e.rightDelim = right
	}
}

// WithFuncMap adds custom template functions.
func WithFuncMap(fm template.FuncMap) EngineOption {
	return func(e *Engine) {
		for k, v := range fm {
			e.funcMap[k] = v
		}
	}
}

// NewEngine creates a new template engine with default or custom options.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		leftDelim:  "{{",
		rightDelim: "}}",
		funcMap:    defaultFuncMap(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"join":    strings.Join,
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"trim":    strings.TrimSpace,
		"default": defaultFunc,
	}
}

func defaultFunc(def, val interface{}) interface{} {
	if val == nil || val == "" {
		return def
	}
	return val
}

// Render renders a snapshot's system prompt and user template with input.
// Rendering always uses the snapshot passed in, so callers can preview any
// version's content, not only the current one.
func (e *Engine) Render(ctx context.Context, snap core.Snapshot, input Input) (*Rendered, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	system, err := e.execute(snap.SystemPrompt, input)
	if err != nil {
		return nil, fmt.Errorf("%w: system prompt: %v", ErrRenderFailed, err)
	}
	user, err := e.execute(snap.UserTemplate, input)
	if err != nil {
		return nil, fmt.Errorf("%w: user template: %v", ErrRenderFailed, err)
	}
	return &Rendered{
		System: system,
		User:   user,
		Input:  input,
	}, nil
}

// RenderVersion renders the snapshot of one version in a prompt's history.
func (e *Engine) RenderVersion(ctx context.Context, p *core.Prompt, versionID string, input Input) (*Rendered, error) {
	v := p.Version(versionID)
	if v == nil {
		return nil, fmt.Errorf("%w: version %s", core.ErrNotFound, versionID)
	}
	return e.Render(ctx, v.Snapshot, input)
}

// execute parses and executes a single template string with data.
func (e *Engine) execute(tpl string, data Input) (string, error) {
	if tpl == "" {
		return "", nil
	}
	t, err := template.New("").Delims(e.leftDelim, e.rightDelim).Funcs(e.funcMap).Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
