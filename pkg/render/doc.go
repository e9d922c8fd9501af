// Package render implements the template renderer: it walks a template tree,
// substitutes {{ key }} tokens in entry names and text content, copies binary
// files verbatim, and writes the result under an output root.
//
// A pass is synchronous and deterministic. The walk is lexical, so rendering
// the same tree with the same mapping into an empty directory always produces
// byte-identical output. Failures abort the pass without rolling back entries
// already written; see MissingKeyError, PathConflictError, ReadError and
// WriteError for the error taxonomy.
package render
