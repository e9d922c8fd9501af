// Package templates resolves template references (a directory, an fs.FS or
// a built-in template name) into the fs.FS the renderer walks.
package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-scaffold/pkg/render"
)

// BuiltinPrefix marks a reference to a template shipped with the binary.
const BuiltinPrefix = "builtin:"

// SourceKind enumerates the template source modalities.
type SourceKind string

const (
	SourceKindDir     SourceKind = "dir"
	SourceKindFS      SourceKind = "fs"
	SourceKindBuiltin SourceKind = "builtin"
)

// ErrUnknownBuiltin is returned for a builtin name that is not registered.
var ErrUnknownBuiltin = errors.New("templates: unknown builtin template")

// Source identifies a template root.
type Source struct {
	kind     SourceKind
	location string
	fsys     fs.FS
}

// SourceFromDir returns a Source rooted at a directory on disk.
func SourceFromDir(path string) Source {
	return Source{kind: SourceKindDir, location: filepath.Clean(path)}
}

// SourceFromFS returns a Source rooted at fsys. name is used in messages.
func SourceFromFS(fsys fs.FS, name string) Source {
	return Source{kind: SourceKindFS, location: name, fsys: fsys}
}

// SourceFromBuiltin returns a Source for a built-in template.
func SourceFromBuiltin(name string) Source {
	return Source{kind: SourceKindBuiltin, location: name}
}

// Resolve turns a CLI reference into a Source: "builtin:<name>" selects a
// built-in template, anything else is a directory.
func Resolve(ref string) Source {
	if name, ok := strings.CutPrefix(ref, BuiltinPrefix); ok {
		return SourceFromBuiltin(name)
	}
	return SourceFromDir(ref)
}

// Kind reports the source kind.
func (s Source) Kind() SourceKind {
	return s.kind
}

// Location reports the directory, builtin name or label of the source.
func (s Source) Location() string {
	return s.location
}

func (s Source) String() string {
	if s.kind == SourceKindBuiltin {
		return BuiltinPrefix + s.location
	}
	return s.location
}

// Open returns the template root as an fs.FS. A missing or unreadable root
// is reported as a render.ReadError.
func (s Source) Open() (fs.FS, error) {
	switch s.kind {
	case SourceKindDir:
		info, err := os.Stat(s.location)
		if err != nil {
			return nil, &render.ReadError{Path: s.location, Err: err}
		}
		if !info.IsDir() {
			return nil, &render.ReadError{Path: s.location, Err: errors.New("not a directory")}
		}
		return os.DirFS(s.location), nil
	case SourceKindFS:
		if s.fsys == nil {
			return nil, errors.New("templates: filesystem is not configured")
		}
		return s.fsys, nil
	case SourceKindBuiltin:
		return BuiltinFS(s.location)
	default:
		return nil, fmt.Errorf("templates: unsupported source kind %q", s.kind)
	}
}
