package answers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceKind identifies where an answers file lives.
type SourceKind string

const (
	// SourceKindFile reads from the local filesystem.
	SourceKindFile SourceKind = "file"
	// SourceKindFS reads from an fs.FS.
	SourceKindFS SourceKind = "fs"
)

// Source locates an answers file.
type Source struct {
	kind SourceKind
	path string
	fsys fs.FS
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return Source{kind: SourceKindFile, path: filepath.Clean(path)}
}

// SourceFromFS returns a Source identifying a file inside fsys.
func SourceFromFS(fsys fs.FS, name string) Source {
	return Source{kind: SourceKindFS, path: name, fsys: fsys}
}

// Kind reports the source kind.
func (s Source) Kind() SourceKind {
	return s.kind
}

// Location reports the path of the answers file.
func (s Source) Location() string {
	return s.path
}

// Load reads and parses the answers file identified by src.
func Load(ctx context.Context, src Source) (Mapping, error) {
	if err := ctx.Err(); err != nil {
		return Mapping{}, err
	}
	if src.path == "" {
		return Mapping{}, errors.New("answers: source path is required")
	}

	var (
		data []byte
		err  error
	)
	switch src.kind {
	case SourceKindFile:
		data, err = os.ReadFile(src.path)
	case SourceKindFS:
		if src.fsys == nil {
			return Mapping{}, errors.New("answers: filesystem is not configured")
		}
		data, err = fs.ReadFile(src.fsys, src.path)
	default:
		return Mapping{}, fmt.Errorf("answers: unsupported source kind %q", src.kind)
	}
	if err != nil {
		return Mapping{}, fmt.Errorf("answers: read %s: %w", src.path, err)
	}
	return Parse(data, src.path)
}

// Parse decodes a flat JSON or YAML document into a Mapping. JSON is read
// through the YAML decoder, so scalars keep their literal text ("3.10" stays
// "3.10"); null becomes the empty string. Nested values are rejected.
func Parse(data []byte, name string) (Mapping, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Mapping{}, fmt.Errorf("answers: file %s is empty", name)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Mapping{}, fmt.Errorf("answers: parse %s: invalid JSON or YAML", name)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return Mapping{}, fmt.Errorf("answers: parse %s: expected a mapping of keys to values", name)
	}

	root := doc.Content[0]
	values := make(map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := strings.TrimSpace(root.Content[i].Value)
		str, err := scalarValue(root.Content[i+1])
		if err != nil {
			return Mapping{}, fmt.Errorf("answers: file %s key %q: %w", name, key, err)
		}
		values[key] = str
	}

	m, err := New(values)
	if err != nil {
		return Mapping{}, fmt.Errorf("answers: file %s: %w", name, err)
	}
	return m, nil
}

// ParseAssignments converts key=value pairs into a Mapping. The value may be
// empty; the key may not.
func ParseAssignments(pairs []string) (Mapping, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return Mapping{}, fmt.Errorf("answers: assignment %q must have the form key=value", pair)
		}
		values[strings.TrimSpace(key)] = value
	}
	return New(values)
}

// Format selects the encoding Write produces.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatForPath picks a Format from a file extension, defaulting to YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Write serialises m so it can be fed back through Load on a later run.
func Write(w io.Writer, m Mapping, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m.Map()); err != nil {
			return fmt.Errorf("answers: encode json: %w", err)
		}
		return nil
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m.Map()); err != nil {
			return fmt.Errorf("answers: encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("answers: unsupported format %q", format)
	}
}

func scalarValue(node *yaml.Node) (string, error) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind != yaml.ScalarNode {
		return "", errors.New("nested values are not supported")
	}
	if node.Tag == "!!null" {
		return "", nil
	}
	return node.Value, nil
}
