// Package manifest loads the metadata a template root may carry about itself:
// the variables it expects (with prompts, defaults and choices), which files
// are copied without rendering, which entries are excluded, and which hooks
// run after rendering. Native manifests are scaffold.yaml, scaffold.yml or
// scaffold.json; a flat cookiecutter.json is understood as well.
package manifest
