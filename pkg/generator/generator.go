// Package generator wires the scaffolding stages together: it opens a
// template source, loads its manifest, resolves answers, renders the tree
// and runs post-render hooks.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-scaffold/pkg/answers"
	"github.com/goliatone/go-scaffold/pkg/hooks"
	"github.com/goliatone/go-scaffold/pkg/manifest"
	"github.com/goliatone/go-scaffold/pkg/prompt"
	"github.com/goliatone/go-scaffold/pkg/render"
	"github.com/goliatone/go-scaffold/pkg/render/template"
	"github.com/goliatone/go-scaffold/pkg/render/template/gotemplate"
	"github.com/goliatone/go-scaffold/pkg/render/template/plain"
	"github.com/goliatone/go-scaffold/pkg/templates"
)

// DefaultEngine is the engine used when none is selected.
const DefaultEngine = gotemplate.Name

// Generator orchestrates a scaffolding run.
type Generator struct {
	engines     *template.Registry
	engineName  string
	driver      prompt.Driver
	runner      hooks.Runner
	logger      *log.Logger
	overwrite   render.OverwritePolicy
	missing     render.MissingKeyPolicy
	interactive bool
	skipHooks   bool
}

// Request describes one scaffolding run.
type Request struct {
	Source     templates.Source
	OutputRoot string
	// Answers usually come from an answers file.
	Answers answers.Mapping
	// Assignments are explicit key=value overrides; they win over Answers.
	Assignments answers.Mapping
}

// Result summarises a completed (or partially completed) run.
type Result struct {
	Manifest manifest.Manifest `json:"manifest"`
	Values   answers.Mapping   `json:"-"`
	Report   render.Report     `json:"report"`
	Hooks    []hooks.Result    `json:"hooks,omitempty"`
}

// DefaultEngines returns a registry holding the pongo2 and plain engines.
func DefaultEngines() *template.Registry {
	registry := template.NewRegistry()
	registry.MustRegister(gotemplate.Name, gotemplate.Factory())
	registry.MustRegister(plain.Name, plain.Factory())
	return registry
}

// New constructs a Generator. It is non-interactive unless WithInteractive
// is supplied.
func New(options ...Option) (*Generator, error) {
	g := &Generator{
		engines:    DefaultEngines(),
		engineName: DefaultEngine,
		runner:     hooks.NewExecRunner(),
		logger:     log.New(io.Discard),
		overwrite:  render.OverwriteFail,
		missing:    render.MissingKeyFail,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}

	if !g.engines.Has(g.engineName) {
		return nil, fmt.Errorf("generator: unknown engine %q", g.engineName)
	}
	if _, err := render.ParseOverwritePolicy(string(g.overwrite)); err != nil {
		return nil, err
	}
	if _, err := render.ParseMissingKeyPolicy(string(g.missing)); err != nil {
		return nil, err
	}
	if g.interactive && g.driver == nil {
		g.driver = prompt.NewSurveyDriver(nil)
	}
	return g, nil
}

// Inspect loads the manifest of a template source without rendering.
func (g *Generator) Inspect(ctx context.Context, src templates.Source) (manifest.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return manifest.Manifest{}, err
	}
	fsys, err := src.Open()
	if err != nil {
		return manifest.Manifest{}, err
	}
	return manifest.Load(fsys)
}

// Generate runs source → manifest → answers → render → hooks. When rendering
// fails the returned Result still carries the partial report.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("generator: context is required")
	}
	if req.OutputRoot == "" {
		return Result{}, errors.New("generator: output root is required")
	}

	fsys, err := req.Source.Open()
	if err != nil {
		return Result{}, err
	}

	m, err := manifest.Load(fsys)
	if err != nil {
		return Result{}, err
	}
	result := Result{Manifest: m}
	g.logger.Debug("loaded template", "source", req.Source.String(), "manifest", m.File, "variables", len(m.Variables))

	engine, err := g.engines.New(g.engineName, fsys)
	if err != nil {
		return result, err
	}

	collector := prompt.NewCollector(prompt.WithDriver(g.driver), prompt.WithLogger(g.logger))
	values, err := collector.Collect(ctx, m, answers.Merge(req.Answers, req.Assignments), engine, g.interactive)
	if err != nil {
		return result, err
	}
	result.Values = values

	renderer, err := render.New(
		render.WithEngine(engine),
		render.WithOverwritePolicy(g.overwrite),
		render.WithMissingKeyPolicy(g.missing),
		render.WithNamespace(m.Namespace),
		render.WithCopyWithoutRender(m.CopyWithoutRender...),
		render.WithExclude(m.Excluded()...),
		render.WithLogger(g.logger),
	)
	if err != nil {
		return result, err
	}

	report, err := renderer.Render(ctx, render.Request{
		Template:   fsys,
		OutputRoot: req.OutputRoot,
		Values:     values,
	})
	result.Report = report
	if err != nil {
		return result, err
	}

	if g.skipHooks || len(m.Hooks) == 0 {
		return result, nil
	}

	root, err := filepath.Abs(req.OutputRoot)
	if err != nil {
		return result, fmt.Errorf("generator: resolve output root: %w", err)
	}
	executor := hooks.NewExecutor(hooks.WithRunner(g.runner), hooks.WithLogger(g.logger))
	result.Hooks, err = executor.Execute(ctx, root, m.Hooks, values, m.Namespace, engine)
	return result, err
}
