package generator

import (
	"github.com/charmbracelet/log"

	"github.com/goliatone/go-scaffold/pkg/hooks"
	"github.com/goliatone/go-scaffold/pkg/prompt"
	"github.com/goliatone/go-scaffold/pkg/render"
	"github.com/goliatone/go-scaffold/pkg/render/template"
)

// Option mutates the generator configuration.
type Option func(*Generator)

// WithEngine selects the template engine by registry name. Defaults to
// pongo2.
func WithEngine(name string) Option {
	return func(g *Generator) {
		if name != "" {
			g.engineName = name
		}
	}
}

// WithEngineRegistry replaces the engine registry.
func WithEngineRegistry(registry *template.Registry) Option {
	return func(g *Generator) {
		if registry != nil {
			g.engines = registry
		}
	}
}

// WithPromptDriver overrides the driver used for interactive collection.
func WithPromptDriver(driver prompt.Driver) Option {
	return func(g *Generator) {
		if driver != nil {
			g.driver = driver
		}
	}
}

// WithHookRunner overrides the runner used for post-render hooks.
func WithHookRunner(runner hooks.Runner) Option {
	return func(g *Generator) {
		if runner != nil {
			g.runner = runner
		}
	}
}

// WithLogger sets the logger shared by every stage.
func WithLogger(logger *log.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithOverwritePolicy forwards the overwrite policy to the renderer.
func WithOverwritePolicy(policy render.OverwritePolicy) Option {
	return func(g *Generator) {
		if policy != "" {
			g.overwrite = policy
		}
	}
}

// WithMissingKeyPolicy forwards the missing-key policy to the renderer.
func WithMissingKeyPolicy(policy render.MissingKeyPolicy) Option {
	return func(g *Generator) {
		if policy != "" {
			g.missing = policy
		}
	}
}

// WithInteractive enables prompting for variables without a preset answer.
func WithInteractive(enabled bool) Option {
	return func(g *Generator) {
		g.interactive = enabled
	}
}

// WithSkipHooks disables post-render hooks.
func WithSkipHooks(skip bool) Option {
	return func(g *Generator) {
		g.skipHooks = skip
	}
}
