// Package plain implements bare {{ key }} substitution with no expression
// language: no filters, no tags, no includes. Text outside tokens, including
// {% ... %} sequences, passes through untouched.
package plain

import (
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/goliatone/go-scaffold/pkg/render/placeholder"
	"github.com/goliatone/go-scaffold/pkg/render/template"
)

// Name identifies the engine in a template.Registry.
const Name = "plain"

// Engine substitutes simple tokens ({{ key }} or {{ ns.key }}) with values
// from the render data. Unknown keys render empty; callers that need strict
// behaviour check for missing keys first.
type Engine struct {
	mu      sync.RWMutex
	globals map[string]any
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New returns an empty Engine.
func New() *Engine {
	return &Engine{globals: make(map[string]any)}
}

// Factory adapts New to template.Factory.
func Factory() template.Factory {
	return func(fs.FS) (template.TemplateRenderer, error) {
		return New(), nil
	}
}

// Name reports the engine identifier.
func (e *Engine) Name() string {
	return Name
}

// RenderString replaces every token in templateContent. Tokens that are not
// bare identifier chains are rejected.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	ctx, err := e.context(data)
	if err != nil {
		return "", err
	}

	refs := placeholder.Scan(templateContent)
	if len(refs) == 0 {
		return templateContent, template.WriteAll(templateContent, out...)
	}

	var b strings.Builder
	b.Grow(len(templateContent))
	last := 0
	for _, ref := range refs {
		if !ref.Simple() {
			return "", fmt.Errorf("plain: unsupported expression %q (only {{ key }} tokens are allowed)", ref.Expr)
		}
		b.WriteString(templateContent[last:ref.Start])
		b.WriteString(lookup(ctx, ref.Root))
		last = ref.End
	}
	b.WriteString(templateContent[last:])

	rendered := b.String()
	if err := template.WriteAll(rendered, out...); err != nil {
		return "", err
	}
	return rendered, nil
}

// RegisterFilter is not supported by the plain engine.
func (e *Engine) RegisterFilter(string, func(any, any) (any, error)) error {
	return template.ErrFiltersUnsupported
}

// GlobalContext seeds values visible to every render.
func (e *Engine) GlobalContext(data any) error {
	values, err := toMap(data)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for key, value := range values {
		e.globals[key] = value
	}
	return nil
}

func (e *Engine) context(data any) (map[string]any, error) {
	values, err := toMap(data)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	ctx := make(map[string]any, len(e.globals)+len(values))
	for key, value := range e.globals {
		ctx[key] = value
	}
	for key, value := range values {
		ctx[key] = value
	}
	return ctx, nil
}

func lookup(ctx map[string]any, chain string) string {
	var current any = ctx
	for _, part := range strings.Split(chain, ".") {
		switch m := current.(type) {
		case map[string]any:
			current = m[part]
		case map[string]string:
			current = m[part]
		default:
			return ""
		}
	}
	if current == nil {
		return ""
	}
	if s, ok := current.(string); ok {
		return s
	}
	return fmt.Sprint(current)
}

func toMap(data any) (map[string]any, error) {
	switch v := data.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[key] = value
		}
		return out, nil
	default:
		return nil, fmt.Errorf("plain: unsupported data type %T", data)
	}
}
