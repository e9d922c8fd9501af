// Package template defines the engine seam used to substitute configuration
// values into template text. The gotemplate subpackage provides the default
// pongo2-backed engine; plain performs bare {{ key }} substitution only.
package template
