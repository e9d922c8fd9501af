package render

// EntryKind distinguishes files from directories in a Report.
type EntryKind string

const (
	KindFile EntryKind = "file"
	KindDir  EntryKind = "dir"
)

// Action records what a render pass did with a template entry.
type Action string

const (
	// ActionRendered means tokens in the file content were substituted.
	ActionRendered Action = "rendered"
	// ActionCopied means the file was copied byte-for-byte (binary or
	// copy-without-render).
	ActionCopied Action = "copied"
	// ActionSkipped means the output path already existed and was kept.
	ActionSkipped Action = "skipped"
	// ActionCreated means a directory was created.
	ActionCreated Action = "created"
)

// Entry describes one template entry and where it landed.
type Entry struct {
	// Source is the template-relative path.
	Source string `json:"source"`
	// Path is the output-relative path after name substitution.
	Path   string    `json:"path"`
	Kind   EntryKind `json:"kind"`
	Action Action    `json:"action"`
}

// Report lists the entries of a render pass in walk order.
type Report struct {
	OutputRoot string  `json:"output_root"`
	Entries    []Entry `json:"entries"`
}

// Count returns how many entries ended with action.
func (r Report) Count(action Action) int {
	n := 0
	for _, entry := range r.Entries {
		if entry.Action == action {
			n++
		}
	}
	return n
}

// Paths returns the output-relative paths of all file entries.
func (r Report) Paths() []string {
	var out []string
	for _, entry := range r.Entries {
		if entry.Kind == KindFile {
			out = append(out, entry.Path)
		}
	}
	return out
}
