package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/goliatone/go-scaffold/pkg/manifest"
)

//go:embed all:builtin
var builtinFiles embed.FS

// Builtin describes a template shipped with the binary.
type Builtin struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BuiltinFS returns the root of the named built-in template.
func BuiltinFS(name string) (fs.FS, error) {
	if name == "" || !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBuiltin, name)
	}
	info, err := fs.Stat(builtinFiles, "builtin/"+name)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBuiltin, name)
	}
	return fs.Sub(builtinFiles, "builtin/"+name)
}

// Builtins lists the built-in templates sorted by name, with the description
// their manifest declares.
func Builtins() ([]Builtin, error) {
	entries, err := fs.ReadDir(builtinFiles, "builtin")
	if err != nil {
		return nil, fmt.Errorf("templates: list builtins: %w", err)
	}

	out := make([]Builtin, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub, err := BuiltinFS(entry.Name())
		if err != nil {
			return nil, err
		}
		m, err := manifest.Load(sub)
		if err != nil {
			return nil, fmt.Errorf("templates: builtin %s: %w", entry.Name(), err)
		}
		out = append(out, Builtin{Name: entry.Name(), Description: m.Description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
