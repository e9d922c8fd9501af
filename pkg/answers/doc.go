// Package answers holds the configuration mapping that drives a render pass:
// a flat set of string keys and values assembled from answers files, command
// line assignments, prompts, and template defaults. Answers files may be JSON
// or YAML; either way they must be a single flat mapping of scalars.
package answers
