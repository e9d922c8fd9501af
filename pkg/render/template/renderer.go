package template

import (
	"errors"
	"io"
)

// ErrFiltersUnsupported is returned by engines that cannot register filters.
var ErrFiltersUnsupported = errors.New("template: engine does not support filters")

// TemplateRenderer substitutes data into template text. Engines must leave
// text without tokens byte-for-byte unchanged.
type TemplateRenderer interface {
	Name() string
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}

// WriteAll copies rendered output to every writer supplied by a caller.
func WriteAll(rendered string, out ...io.Writer) error {
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return err
		}
	}
	return nil
}
