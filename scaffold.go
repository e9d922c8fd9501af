package scaffold

import (
	"context"

	"github.com/goliatone/go-scaffold/pkg/answers"
	"github.com/goliatone/go-scaffold/pkg/generator"
	"github.com/goliatone/go-scaffold/pkg/render"
	"github.com/goliatone/go-scaffold/pkg/templates"
)

// Report aliases render.Report so callers of Render need no extra import.
type Report = render.Report

// Result aliases generator.Result.
type Result = generator.Result

// NewGenerator exposes the generator constructor from the top-level module.
func NewGenerator(options ...generator.Option) (*generator.Generator, error) {
	return generator.New(options...)
}

// Render materialises outputRoot from the template directory at templateRoot,
// substituting config into file names and contents. It reads no manifest and
// runs no hooks; use Generate for the full pipeline.
func Render(ctx context.Context, templateRoot, outputRoot string, config map[string]string, options ...render.Option) (Report, error) {
	values, err := answers.New(config)
	if err != nil {
		return Report{}, err
	}
	fsys, err := templates.SourceFromDir(templateRoot).Open()
	if err != nil {
		return Report{}, err
	}
	r, err := render.New(options...)
	if err != nil {
		return Report{}, err
	}
	return r.Render(ctx, render.Request{
		Template:   fsys,
		OutputRoot: outputRoot,
		Values:     values,
	})
}

// Generate runs the full pipeline (manifest, answers, render, hooks) for a
// template reference, either a directory or builtin:<name>, without
// prompting.
func Generate(ctx context.Context, ref, outputRoot string, config map[string]string, options ...generator.Option) (Result, error) {
	values, err := answers.New(config)
	if err != nil {
		return Result{}, err
	}
	gen, err := generator.New(options...)
	if err != nil {
		return Result{}, err
	}
	return gen.Generate(ctx, generator.Request{
		Source:      templates.Resolve(ref),
		OutputRoot:  outputRoot,
		Assignments: values,
	})
}
