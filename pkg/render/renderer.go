package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/goliatone/go-scaffold/internal/fsutil"
	"github.com/goliatone/go-scaffold/pkg/answers"
	"github.com/goliatone/go-scaffold/pkg/render/placeholder"
	"github.com/goliatone/go-scaffold/pkg/render/template"
	"github.com/goliatone/go-scaffold/pkg/render/template/gotemplate"
)

// binarySniffLen matches the window git uses to classify a blob as binary.
const binarySniffLen = 8000

// DefaultExclude lists template entries never copied to the output.
var DefaultExclude = []string{".git", "**/.git", "**/.DS_Store"}

// Request describes a single render pass.
type Request struct {
	// Template is the template root. It is only read.
	Template fs.FS
	// OutputRoot is the directory the rendered tree is written into.
	OutputRoot string
	// Values is the configuration mapping substituted into tokens.
	Values answers.Mapping
}

// Renderer materialises a project directory from a template tree and a
// configuration mapping. A Renderer holds no per-pass state and may be reused.
type Renderer struct {
	engine    template.TemplateRenderer
	factory   template.Factory
	overwrite OverwritePolicy
	missing   MissingKeyPolicy
	namespace string
	verbatim  []string
	exclude   []string
	logger    *log.Logger
}

// New constructs a Renderer. Without WithEngine or WithEngineFactory the
// pongo2 engine is used.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		factory:   gotemplate.Factory(),
		overwrite: OverwriteFail,
		missing:   MissingKeyFail,
		exclude:   append([]string(nil), DefaultExclude...),
		logger:    discardLogger(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if _, err := ParseOverwritePolicy(string(r.overwrite)); err != nil {
		return nil, err
	}
	if _, err := ParseMissingKeyPolicy(string(r.missing)); err != nil {
		return nil, err
	}
	for _, pattern := range append(append([]string(nil), r.verbatim...), r.exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("render: invalid glob %q", pattern)
		}
	}
	return r, nil
}

// Render walks req.Template in lexical order and writes the rendered tree
// under req.OutputRoot. Any error aborts the pass; entries written before the
// failure are left in place. Each file is written atomically.
func (r *Renderer) Render(ctx context.Context, req Request) (Report, error) {
	if ctx == nil {
		return Report{}, errors.New("render: context is required")
	}
	if req.Template == nil {
		return Report{}, errors.New("render: template filesystem is required")
	}
	if strings.TrimSpace(req.OutputRoot) == "" {
		return Report{}, errors.New("render: output root is required")
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	if _, err := fs.Stat(req.Template, "."); err != nil {
		return Report{}, &ReadError{Path: ".", Err: err}
	}

	engine, err := r.engineFor(req.Template)
	if err != nil {
		return Report{}, err
	}

	if err := r.prepareOutputRoot(req.OutputRoot); err != nil {
		return Report{}, err
	}

	p := &pass{
		Renderer:  r,
		ctx:       ctx,
		engine:    engine,
		templates: req.Template,
		values:    req.Values,
		data:      req.Values.Context(r.namespace),
		root:      req.OutputRoot,
		dirs:      map[string]string{".": ""},
		written:   make(map[string]struct{}),
		report:    Report{OutputRoot: req.OutputRoot},
	}

	err = fs.WalkDir(req.Template, ".", p.visit)
	if err != nil {
		r.logger.Debug("render pass aborted", "output", req.OutputRoot, "entries", len(p.report.Entries), "err", err)
		return p.report, err
	}

	r.logger.Info("rendered template",
		"output", req.OutputRoot,
		"rendered", p.report.Count(ActionRendered),
		"copied", p.report.Count(ActionCopied),
		"skipped", p.report.Count(ActionSkipped),
	)
	return p.report, nil
}

func (r *Renderer) engineFor(templates fs.FS) (template.TemplateRenderer, error) {
	if r.engine != nil {
		return r.engine, nil
	}
	engine, err := r.factory(templates)
	if err != nil {
		return nil, fmt.Errorf("render: build engine: %w", err)
	}
	return engine, nil
}

func (r *Renderer) prepareOutputRoot(root string) error {
	state, err := fsutil.InspectDir(root)
	if err != nil {
		return &WriteError{Path: root, Err: err}
	}

	switch state {
	case fsutil.NotDir:
		return &PathConflictError{Path: root, Reason: "output root exists and is not a directory"}
	case fsutil.DirNotEmpty:
		if r.overwrite == OverwriteFail {
			return &PathConflictError{Path: root, Reason: "output root exists and is not empty"}
		}
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return &WriteError{Path: root, Err: err}
	}
	return nil
}

type pass struct {
	*Renderer

	ctx       context.Context
	engine    template.TemplateRenderer
	templates fs.FS
	values    answers.Mapping
	data      map[string]any
	root      string
	dirs      map[string]string
	written   map[string]struct{}
	report    Report
}

func (p *pass) visit(src string, entry fs.DirEntry, walkErr error) error {
	if walkErr != nil {
		return &ReadError{Path: src, Err: walkErr}
	}
	if src == "." {
		return nil
	}
	if err := p.ctx.Err(); err != nil {
		return err
	}

	if matchAny(p.exclude, src) {
		p.logger.Debug("excluded", "path", src)
		if entry.IsDir() {
			return fs.SkipDir
		}
		return nil
	}

	parent, ok := p.dirs[path.Dir(src)]
	if !ok {
		// parent was omitted
		if entry.IsDir() {
			return fs.SkipDir
		}
		return nil
	}

	name, err := p.renderName(src, entry.Name())
	if err != nil {
		return err
	}
	if name == "" {
		p.logger.Debug("omitted entry with empty rendered name", "path", src)
		if entry.IsDir() {
			return fs.SkipDir
		}
		return nil
	}
	rel := path.Join(parent, name)

	if entry.IsDir() {
		p.dirs[src] = rel
		return p.makeDir(src, rel)
	}
	if !entry.Type().IsRegular() {
		p.logger.Debug("skipping non-regular entry", "path", src)
		return nil
	}
	return p.writeFile(src, rel, entry)
}

func (p *pass) renderName(src, name string) (string, error) {
	if !placeholder.Contains(name) {
		return name, nil
	}
	if err := p.checkMissing(src, name, true); err != nil {
		return "", err
	}

	rendered, err := p.engine.RenderString(name, p.data)
	if err != nil {
		return "", &TemplateError{Path: src, Err: err}
	}
	rendered = strings.TrimSpace(rendered)
	if rendered == "." || rendered == ".." || strings.ContainsAny(rendered, `/\`) {
		return "", &TemplateError{Path: src, Err: fmt.Errorf("%w: %q", ErrInvalidPath, rendered)}
	}
	return rendered, nil
}

func (p *pass) checkMissing(src, text string, inName bool) error {
	if p.missing != MissingKeyFail {
		return nil
	}
	missing := placeholder.Missing(text, p.namespace, p.values.Has)
	if len(missing) == 0 {
		return nil
	}
	return &MissingKeyError{Key: missing[0], Path: src, InName: inName}
}

func (p *pass) makeDir(src, rel string) error {
	dst := filepath.Join(p.root, filepath.FromSlash(rel))

	info, err := os.Stat(dst)
	switch {
	case err == nil && !info.IsDir():
		return &PathConflictError{Path: dst, Reason: "a file exists where a directory is rendered"}
	case err == nil:
		p.record(src, rel, KindDir, ActionSkipped)
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return &WriteError{Path: dst, Err: err}
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return &WriteError{Path: dst, Err: err}
	}
	p.record(src, rel, KindDir, ActionCreated)
	return nil
}

func (p *pass) writeFile(src, rel string, entry fs.DirEntry) error {
	dst := filepath.Join(p.root, filepath.FromSlash(rel))

	if _, dup := p.written[rel]; dup {
		return &PathConflictError{Path: dst, Reason: "rendered by more than one template entry"}
	}

	info, err := os.Lstat(dst)
	switch {
	case err == nil && info.IsDir():
		return &PathConflictError{Path: dst, Reason: "a directory exists where a file is rendered"}
	case err == nil && p.overwrite == OverwriteSkip:
		p.record(src, rel, KindFile, ActionSkipped)
		return nil
	case err == nil && p.overwrite == OverwriteFail:
		return &PathConflictError{Path: dst, Reason: "file already exists"}
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return &WriteError{Path: dst, Err: err}
	}

	data, err := fs.ReadFile(p.templates, src)
	if err != nil {
		return &ReadError{Path: src, Err: err}
	}

	action := ActionCopied
	content := data
	if !p.isVerbatim(src, rel) && !isBinary(data) {
		if err := p.checkMissing(src, string(data), false); err != nil {
			return err
		}
		rendered, err := p.engine.RenderString(string(data), p.data)
		if err != nil {
			return &TemplateError{Path: src, Err: err}
		}
		content = []byte(rendered)
		action = ActionRendered
	}

	if err := fsutil.WriteFileAtomic(dst, content, fileMode(entry)); err != nil {
		return &WriteError{Path: dst, Err: err}
	}
	p.written[rel] = struct{}{}
	p.record(src, rel, KindFile, action)
	return nil
}

func (p *pass) record(src, rel string, kind EntryKind, action Action) {
	p.logger.Debug(string(action), "source", src, "path", rel)
	p.report.Entries = append(p.report.Entries, Entry{
		Source: src,
		Path:   rel,
		Kind:   kind,
		Action: action,
	})
}

func (p *pass) isVerbatim(src, rel string) bool {
	return matchAny(p.verbatim, src) || matchAny(p.verbatim, rel)
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func isBinary(data []byte) bool {
	sniff := data
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		return true
	}
	return !utf8.Valid(data)
}

// fileMode keeps the executable bit of template files. Embedded filesystems
// report read-only modes, so only the executable bit is carried over.
func fileMode(entry fs.DirEntry) os.FileMode {
	info, err := entry.Info()
	if err == nil && info.Mode().Perm()&0o111 != 0 {
		return 0o755
	}
	return 0o644
}
