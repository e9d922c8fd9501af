package render

import (
	"errors"
	"fmt"
)

// Sentinels matched through errors.Is against the typed errors below.
var (
	ErrMissingKey   = errors.New("render: missing config key")
	ErrPathConflict = errors.New("render: path conflict")
	ErrRead         = errors.New("render: read failed")
	ErrWrite        = errors.New("render: write failed")
	ErrTemplate     = errors.New("render: template failed")
	ErrInvalidPath  = errors.New("render: invalid rendered path")
)

// MissingKeyError reports a template token whose key is absent from the
// configuration mapping.
type MissingKeyError struct {
	Key string
	// Path is the template-relative path of the file or directory that
	// references Key.
	Path string
	// InName is true when the token sits in the entry name rather than its
	// content.
	InName bool
}

func (e *MissingKeyError) Error() string {
	where := "content of"
	if e.InName {
		where = "name of"
	}
	return fmt.Sprintf("render: missing config key %q referenced in %s %s", e.Key, where, e.Path)
}

func (e *MissingKeyError) Is(target error) bool {
	return target == ErrMissingKey
}

// PathConflictError reports an output path that cannot be written under the
// active overwrite policy.
type PathConflictError struct {
	Path   string
	Reason string
}

func (e *PathConflictError) Error() string {
	return fmt.Sprintf("render: path conflict at %s: %s", e.Path, e.Reason)
}

func (e *PathConflictError) Is(target error) bool {
	return target == ErrPathConflict
}

// ReadError wraps a failure reading the template tree.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("render: read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool {
	return target == ErrRead
}

// WriteError wraps a failure creating output entries.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("render: write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}

// TemplateError wraps an engine failure (syntax or execution) or a rendered
// name that is not a single path element.
type TemplateError struct {
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("render: template %s: %v", e.Path, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

func (e *TemplateError) Is(target error) bool {
	return target == ErrTemplate
}
