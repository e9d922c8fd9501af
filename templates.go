package scaffold

import (
	"io/fs"

	"github.com/goliatone/go-scaffold/pkg/templates"
)

// BuiltinTemplates lists the templates embedded in the module.
func BuiltinTemplates() ([]templates.Builtin, error) {
	return templates.Builtins()
}

// BuiltinFS exposes an embedded template so callers can copy or extend it.
func BuiltinFS(name string) (fs.FS, error) {
	return templates.BuiltinFS(name)
}
