package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-scaffold/pkg/render/template"
)

// OverwritePolicy controls what happens when output paths already exist.
type OverwritePolicy string

const (
	// OverwriteFail refuses to render into a non-empty output root.
	OverwriteFail OverwritePolicy = "fail"
	// OverwriteReplace replaces existing files.
	OverwriteReplace OverwritePolicy = "overwrite"
	// OverwriteSkip keeps existing files and reports them as skipped.
	OverwriteSkip OverwritePolicy = "skip"
)

// ParseOverwritePolicy validates a policy name.
func ParseOverwritePolicy(raw string) (OverwritePolicy, error) {
	switch p := OverwritePolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case OverwriteFail, OverwriteReplace, OverwriteSkip:
		return p, nil
	case "":
		return OverwriteFail, nil
	default:
		return "", fmt.Errorf("render: unknown overwrite policy %q (want fail, overwrite or skip)", raw)
	}
}

// MissingKeyPolicy controls how tokens with no configured value resolve.
type MissingKeyPolicy string

const (
	// MissingKeyFail aborts the pass with a MissingKeyError.
	MissingKeyFail MissingKeyPolicy = "error"
	// MissingKeyEmpty substitutes the empty string.
	MissingKeyEmpty MissingKeyPolicy = "empty"
)

// ParseMissingKeyPolicy validates a policy name.
func ParseMissingKeyPolicy(raw string) (MissingKeyPolicy, error) {
	switch p := MissingKeyPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case MissingKeyFail, MissingKeyEmpty:
		return p, nil
	case "":
		return MissingKeyFail, nil
	default:
		return "", fmt.Errorf("render: unknown missing-key policy %q (want error or empty)", raw)
	}
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEngine fixes the engine used for every render pass.
func WithEngine(engine template.TemplateRenderer) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithEngineFactory builds a fresh engine per pass, bound to the template
// filesystem being rendered. Ignored when WithEngine is also supplied.
func WithEngineFactory(factory template.Factory) Option {
	return func(r *Renderer) {
		if factory != nil {
			r.factory = factory
		}
	}
}

// WithOverwritePolicy selects the overwrite policy. Defaults to OverwriteFail.
func WithOverwritePolicy(policy OverwritePolicy) Option {
	return func(r *Renderer) {
		if policy != "" {
			r.overwrite = policy
		}
	}
}

// WithMissingKeyPolicy selects the missing-key policy. Defaults to
// MissingKeyFail.
func WithMissingKeyPolicy(policy MissingKeyPolicy) Option {
	return func(r *Renderer) {
		if policy != "" {
			r.missing = policy
		}
	}
}

// WithNamespace exposes configuration values under name as well as at the
// top level, so {{ name.key }} tokens resolve.
func WithNamespace(name string) Option {
	return func(r *Renderer) {
		r.namespace = strings.TrimSpace(name)
	}
}

// WithCopyWithoutRender lists doublestar globs whose files are copied
// verbatim. Their names are still rendered.
func WithCopyWithoutRender(patterns ...string) Option {
	return func(r *Renderer) {
		r.verbatim = append(r.verbatim, patterns...)
	}
}

// WithExclude lists doublestar globs of template entries left out of the
// output entirely.
func WithExclude(patterns ...string) Option {
	return func(r *Renderer) {
		r.exclude = append(r.exclude, patterns...)
	}
}

// WithLogger sets the logger used for per-entry debug output.
func WithLogger(logger *log.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
