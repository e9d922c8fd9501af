package manifest

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/goliatone/go-scaffold/pkg/answers"
	"github.com/goliatone/go-scaffold/pkg/hooks"
)

// Format identifies the manifest dialect a template uses.
type Format string

const (
	// FormatNone means the template has no manifest.
	FormatNone Format = "none"
	// FormatScaffold is the native scaffold.yaml/yml/json dialect.
	FormatScaffold Format = "scaffold"
	// FormatCookiecutter is a flat cookiecutter.json.
	FormatCookiecutter Format = "cookiecutter"
)

// Manifest is the optional metadata a template root carries about itself.
type Manifest struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	// Namespace, when set, exposes every answer as {{ <namespace>.key }} in
	// addition to {{ key }}.
	Namespace         string       `yaml:"namespace" json:"namespace"`
	Variables         []Variable   `yaml:"variables" json:"variables"`
	CopyWithoutRender []string     `yaml:"copy_without_render" json:"copy_without_render"`
	Exclude           []string     `yaml:"exclude" json:"exclude"`
	Hooks             []hooks.Hook `yaml:"hooks" json:"hooks"`

	// File is the manifest path inside the template root. Empty when the
	// template has none.
	File   string `yaml:"-" json:"file,omitempty"`
	Format Format `yaml:"-" json:"format"`
}

// Variable declares one configuration key a template expects.
type Variable struct {
	Name   string `yaml:"name" json:"name"`
	Prompt string `yaml:"prompt" json:"prompt,omitempty"`
	Help   string `yaml:"help" json:"help,omitempty"`
	// Default is itself a template, rendered against the answers collected
	// for earlier variables.
	Default string   `yaml:"default" json:"default,omitempty"`
	Choices []string `yaml:"choices" json:"choices,omitempty"`
	Secret  bool     `yaml:"secret" json:"secret,omitempty"`
	// Hidden variables are never prompted; their rendered default is used.
	Hidden bool `yaml:"hidden" json:"hidden,omitempty"`
}

// Label is the text shown when prompting for v.
func (v Variable) Label() string {
	if p := strings.TrimSpace(v.Prompt); p != "" {
		return p
	}
	return v.Name
}

// Variable looks up a declared variable by name.
func (m Manifest) Variable(name string) (Variable, bool) {
	for _, v := range m.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Names returns the declared variable names in declaration order.
func (m Manifest) Names() []string {
	out := make([]string, 0, len(m.Variables))
	for _, v := range m.Variables {
		out = append(out, v.Name)
	}
	return out
}

// Excluded returns the globs a render pass must skip: the manifest's own
// exclude list plus the manifest file itself.
func (m Manifest) Excluded() []string {
	out := append([]string(nil), m.Exclude...)
	if m.File != "" {
		out = append(out, m.File)
	}
	return out
}

// Validate checks variable names, choices, hooks and globs.
func (m Manifest) Validate() error {
	if m.Namespace != "" {
		if err := answers.ValidateKey(m.Namespace); err != nil {
			return fmt.Errorf("manifest: namespace: %w", err)
		}
	}

	seen := make(map[string]struct{}, len(m.Variables))
	for idx, v := range m.Variables {
		if err := answers.ValidateKey(v.Name); err != nil {
			return fmt.Errorf("manifest: variable %d: %w", idx, err)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("manifest: duplicate variable %q", v.Name)
		}
		seen[v.Name] = struct{}{}
		if v.Name == m.Namespace {
			return fmt.Errorf("manifest: variable %q shadows the namespace", v.Name)
		}

		if len(v.Choices) > 0 {
			choices := make(map[string]struct{}, len(v.Choices))
			for _, c := range v.Choices {
				if _, dup := choices[c]; dup {
					return fmt.Errorf("manifest: variable %q lists choice %q twice", v.Name, c)
				}
				choices[c] = struct{}{}
			}
			if v.Default != "" && !strings.Contains(v.Default, "{") {
				if _, ok := choices[v.Default]; !ok {
					return fmt.Errorf("manifest: variable %q default %q is not one of its choices", v.Name, v.Default)
				}
			}
		}
	}

	for _, h := range m.Hooks {
		if err := h.Validate(); err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
	}

	for _, pattern := range append(append([]string(nil), m.CopyWithoutRender...), m.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("manifest: invalid glob %q", pattern)
		}
	}
	return nil
}
