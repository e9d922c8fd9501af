package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// CookiecutterNamespace is the token namespace cookiecutter templates use.
const CookiecutterNamespace = "cookiecutter"

// Files lists the manifest names Load probes, in priority order.
var Files = []string{"scaffold.yaml", "scaffold.yml", "scaffold.json", "cookiecutter.json"}

// cookiecutter templates keep their Python hooks here; they are not rendered.
var cookiecutterExclude = []string{"hooks", "hooks/**"}

// Load reads the manifest at the root of fsys. A template without a manifest
// yields an empty Manifest with FormatNone.
func Load(fsys fs.FS) (Manifest, error) {
	if fsys == nil {
		return Manifest{}, errors.New("manifest: filesystem is required")
	}

	for _, name := range Files {
		data, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Manifest{}, fmt.Errorf("manifest: read %s: %w", name, err)
		}

		var m Manifest
		if name == "cookiecutter.json" {
			m, err = ParseCookiecutter(data, name)
		} else {
			m, err = Parse(data, name)
		}
		if err != nil {
			return Manifest{}, err
		}
		m.File = name
		return m, nil
	}

	return Manifest{Format: FormatNone}, nil
}

// Parse decodes a native manifest. JSON documents are accepted through the
// YAML decoder.
func Parse(data []byte, source string) (Manifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Manifest{}, fmt.Errorf("manifest: file %s is empty", source)
	}

	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("manifest: parse %s: %w", source, err)
	}

	m.Format = FormatScaffold
	m.Namespace = strings.TrimSpace(m.Namespace)
	for i := range m.Variables {
		m.Variables[i].Name = strings.TrimSpace(m.Variables[i].Name)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, fmt.Errorf("manifest: %s: %w", source, err)
	}
	return m, nil
}

// ParseCookiecutter maps a cookiecutter.json onto a Manifest, keeping key
// order as prompt order:
//
//   - "key": "value"       variable with a default
//   - "key": ["a", "b"]    variable with choices (first is the default)
//   - "__key": "value"     hidden variable, rendered but never prompted
//   - "__prompts__": {...} prompt text per variable
//   - "_copy_without_render": [...] copy-without-render globs
//
// Other "_" keys are cookiecutter settings and are ignored.
func ParseCookiecutter(data []byte, source string) (Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Manifest{}, fmt.Errorf("manifest: parse %s: %w", source, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return Manifest{}, fmt.Errorf("manifest: %s must contain a JSON object", source)
	}

	m := Manifest{
		Format:    FormatCookiecutter,
		Namespace: CookiecutterNamespace,
		Exclude:   append([]string(nil), cookiecutterExclude...),
	}
	prompts := map[string]string{}

	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value := root.Content[i+1]

		switch {
		case key == "__prompts__":
			if err := value.Decode(&prompts); err != nil {
				return Manifest{}, fmt.Errorf("manifest: %s __prompts__: %w", source, err)
			}
		case key == "_copy_without_render":
			if err := value.Decode(&m.CopyWithoutRender); err != nil {
				return Manifest{}, fmt.Errorf("manifest: %s _copy_without_render: %w", source, err)
			}
		case strings.HasPrefix(key, "__"):
			v, err := cookiecutterVariable(key, value, source)
			if err != nil {
				return Manifest{}, err
			}
			v.Hidden = true
			m.Variables = append(m.Variables, v)
		case strings.HasPrefix(key, "_"):
			continue
		default:
			v, err := cookiecutterVariable(key, value, source)
			if err != nil {
				return Manifest{}, err
			}
			m.Variables = append(m.Variables, v)
		}
	}

	for i := range m.Variables {
		if prompt, ok := prompts[m.Variables[i].Name]; ok {
			m.Variables[i].Prompt = prompt
		}
	}

	if err := m.Validate(); err != nil {
		return Manifest{}, fmt.Errorf("manifest: %s: %w", source, err)
	}
	return m, nil
}

func cookiecutterVariable(key string, value *yaml.Node, source string) (Variable, error) {
	v := Variable{Name: key}
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag != "!!null" {
			v.Default = value.Value
		}
	case yaml.SequenceNode:
		if err := value.Decode(&v.Choices); err != nil {
			return Variable{}, fmt.Errorf("manifest: %s key %q: %w", source, key, err)
		}
		if len(v.Choices) > 0 {
			v.Default = v.Choices[0]
		}
	default:
		return Variable{}, fmt.Errorf("manifest: %s key %q: nested objects are not supported", source, key)
	}
	return v, nil
}
