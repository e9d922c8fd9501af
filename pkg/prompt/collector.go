// Package prompt collects answers for the variables a template manifest
// declares, from preset values, rendered defaults or an interactive driver.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-scaffold/pkg/answers"
	"github.com/goliatone/go-scaffold/pkg/manifest"
	"github.com/goliatone/go-scaffold/pkg/render/template"
)

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrInvalidChoice is returned when a value is not one of a variable's
	// choices.
	ErrInvalidChoice = errors.New("prompt: value is not an allowed choice")
	// ErrNoDriver is returned when interactive collection has no driver.
	ErrNoDriver = errors.New("prompt: interactive collection requires a driver")
)

// Collector resolves manifest variables into an answers.Mapping.
type Collector struct {
	driver Driver
	logger *log.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithDriver sets the prompt driver used for interactive collection.
func WithDriver(driver Driver) Option {
	return func(c *Collector) {
		if driver != nil {
			c.driver = driver
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCollector builds a Collector. Without WithDriver it can only run
// non-interactively.
func NewCollector(options ...Option) *Collector {
	c := &Collector{logger: log.New(io.Discard)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Collect walks m.Variables in order. For each variable a preset value wins;
// otherwise its default is rendered against the answers gathered so far and
// either used directly (hidden variables, non-interactive runs) or offered
// as the prompt default. Variables with no preset and no default are left
// unset when not interactive. Preset keys the manifest does not declare are
// kept.
func (c *Collector) Collect(ctx context.Context, m manifest.Manifest, preset answers.Mapping, engine template.TemplateRenderer, interactive bool) (answers.Mapping, error) {
	if interactive && c.driver == nil {
		return answers.Mapping{}, ErrNoDriver
	}

	collected := preset.Map()
	if interactive && m.Description != "" {
		if err := c.driver.Info(ctx, m.Description); err != nil {
			return answers.Mapping{}, err
		}
	}

	for _, v := range m.Variables {
		if err := ctx.Err(); err != nil {
			return answers.Mapping{}, err
		}

		if value, ok := preset.Get(v.Name); ok {
			if err := checkChoice(v, value); err != nil {
				return answers.Mapping{}, err
			}
			c.logger.Debug("using preset answer", "key", v.Name)
			continue
		}

		def, err := c.renderDefault(v, collected, m.Namespace, engine)
		if err != nil {
			return answers.Mapping{}, err
		}
		if def == "" && len(v.Choices) > 0 {
			def = v.Choices[0]
		}

		if v.Hidden || !interactive {
			if v.Default == "" && len(v.Choices) == 0 {
				continue
			}
			if err := checkChoice(v, def); err != nil {
				return answers.Mapping{}, err
			}
			collected[v.Name] = def
			continue
		}

		value, err := c.ask(ctx, v, def)
		if err != nil {
			return answers.Mapping{}, err
		}
		collected[v.Name] = value
	}

	return answers.New(collected)
}

func (c *Collector) renderDefault(v manifest.Variable, collected map[string]string, namespace string, engine template.TemplateRenderer) (string, error) {
	if v.Default == "" || engine == nil {
		return v.Default, nil
	}
	current, err := answers.New(collected)
	if err != nil {
		return "", err
	}
	out, err := engine.RenderString(v.Default, current.Context(namespace))
	if err != nil {
		return "", fmt.Errorf("prompt: default for %q: %w", v.Name, err)
	}
	return strings.TrimSpace(out), nil
}

func (c *Collector) ask(ctx context.Context, v manifest.Variable, def string) (string, error) {
	switch {
	case len(v.Choices) > 0:
		idx, err := c.driver.Select(ctx, SelectConfig{
			Message:      v.Label(),
			Options:      v.Choices,
			DefaultIndex: indexOf(v.Choices, def),
			Help:         v.Help,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(v.Choices) {
			return "", fmt.Errorf("%w: %s", ErrInvalidChoice, v.Name)
		}
		return v.Choices[idx], nil

	case isBool(def):
		b, _ := strconv.ParseBool(strings.ToLower(def))
		ok, err := c.driver.Confirm(ctx, ConfirmConfig{Message: v.Label(), Default: b, Help: v.Help})
		if err != nil {
			return "", err
		}
		if ok {
			return "true", nil
		}
		return "false", nil

	case v.Secret:
		return c.driver.Password(ctx, InputConfig{Message: v.Label(), Default: def, Help: v.Help, Validator: required(def)})

	default:
		return c.driver.Input(ctx, InputConfig{Message: v.Label(), Default: def, Help: v.Help, Validator: required(def)})
	}
}

func checkChoice(v manifest.Variable, value string) error {
	if len(v.Choices) == 0 || indexOf(v.Choices, value) >= 0 {
		return nil
	}
	return fmt.Errorf("%w: %s=%q (allowed: %s)", ErrInvalidChoice, v.Name, value, strings.Join(v.Choices, ", "))
}

func isBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "false":
		return true
	}
	return false
}

func required(def string) func(string) error {
	if def != "" {
		return nil
	}
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("a value is required")
		}
		return nil
	}
}
