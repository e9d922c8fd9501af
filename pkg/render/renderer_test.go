package render_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-scaffold/pkg/answers"
	"github.com/goliatone/go-scaffold/pkg/render"
	"github.com/goliatone/go-scaffold/pkg/render/placeholder"
	"github.com/goliatone/go-scaffold/pkg/render/template/plain"
	"github.com/goliatone/go-scaffold/pkg/testsupport"
)

func TestRender_HelloWorld(t *testing.T) {
	tpl := fstest.MapFS{
		"greeting.txt": {Data: []byte("Hello, {{ name }}!")},
	}
	out := filepath.Join(t.TempDir(), "out")

	report := mustRender(t, newRenderer(t), tpl, out, map[string]string{"name": "World"})

	got := testsupport.ReadTree(t, out)
	want := map[string]string{"greeting.txt": "Hello, World!"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
	if report.Count(render.ActionRendered) != 1 {
		t.Fatalf("expected one rendered entry, got %+v", report.Entries)
	}
}

func TestRender_RenamesPathsAndLeavesNoTokens(t *testing.T) {
	tpl := fstest.MapFS{
		"README.md":                          {Data: []byte("# {{ project_name }}\n")},
		"src/{{ project_slug }}/main.py":     {Data: []byte("\"\"\"Core functionality for {{ project_name }}.\"\"\"\n")},
		"src/{{ project_slug }}/__init__.py": {Data: []byte("")},
		"tests/test_{{ project_slug }}.py":   {Data: []byte("from {{ project_slug }}.main import greet\n")},
	}
	out := t.TempDir()
	values := map[string]string{"project_name": "Acme Tools", "project_slug": "acme"}

	report := mustRender(t, newRenderer(t), tpl, out, values)

	got := testsupport.ReadTree(t, out)
	want := map[string]string{
		"README.md":            "# Acme Tools\n",
		"src/":                 "",
		"src/acme/":            "",
		"src/acme/__init__.py": "",
		"src/acme/main.py":     "\"\"\"Core functionality for Acme Tools.\"\"\"\n",
		"tests/":               "",
		"tests/test_acme.py":   "from acme.main import greet\n",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}

	for path, content := range got {
		if placeholder.Contains(path) || placeholder.Contains(content) {
			t.Fatalf("unresolved token in %s", path)
		}
	}

	wantPaths := []string{"README.md", "src/acme/__init__.py", "src/acme/main.py", "tests/test_acme.py"}
	if diff := cmp.Diff(wantPaths, report.Paths()); diff != "" {
		t.Fatalf("report paths mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_Idempotent(t *testing.T) {
	tpl := fstest.MapFS{
		"a/{{ x }}.txt":  {Data: []byte("{{ x }}-{{ y }}")},
		"b/static.bin":   {Data: []byte{0x00, 0x01, '{', '{'}},
		"c/nested/z.cfg": {Data: []byte("y={{ y|upper }}\n")},
	}
	values := map[string]string{"x": "one", "y": "two"}
	r := newRenderer(t)

	first := filepath.Join(t.TempDir(), "first")
	second := filepath.Join(t.TempDir(), "second")
	mustRender(t, r, tpl, first, values)
	mustRender(t, r, tpl, second, values)

	if diff := cmp.Diff(testsupport.ReadTree(t, first), testsupport.ReadTree(t, second)); diff != "" {
		t.Fatalf("renders differ (-first +second):\n%s", diff)
	}
}

func TestRender_MissingKeyAbortsAndKeepsPartialOutput(t *testing.T) {
	tpl := fstest.MapFS{
		"a.txt": {Data: []byte("{{ name }}")},
		"b.txt": {Data: []byte("{{ name }} by {{ author }}")},
		"c.txt": {Data: []byte("{{ name }}")},
	}
	out := t.TempDir()

	r := newRenderer(t)
	_, err := r.Render(context.Background(), render.Request{
		Template:   tpl,
		OutputRoot: out,
		Values:     answers.MustNew(map[string]string{"name": "World"}),
	})
	if !errors.Is(err, render.ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}

	var missing *render.MissingKeyError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingKeyError, got %T", err)
	}
	if missing.Key != "author" || missing.Path != "b.txt" || missing.InName {
		t.Fatalf("unexpected error detail %+v", missing)
	}

	got := testsupport.ReadTree(t, out)
	want := map[string]string{"a.txt": "World"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("partial output mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_MissingKeyInName(t *testing.T) {
	tpl := fstest.MapFS{
		"{{ module }}/x.txt": {Data: []byte("x")},
	}
	_, err := newRenderer(t).Render(context.Background(), render.Request{
		Template:   tpl,
		OutputRoot: t.TempDir(),
		Values:     answers.MustNew(nil),
	})

	var missing *render.MissingKeyError
	if !errors.As(err, &missing) || !missing.InName || missing.Key != "module" {
		t.Fatalf("expected missing key in name, got %v", err)
	}
}

func TestRender_MissingKeyEmptyPolicy(t *testing.T) {
	tpl := fstest.MapFS{
		"a.txt":              {Data: []byte("[{{ absent }}]")},
		"{{ absent }}/b.txt": {Data: []byte("omitted")},
	}
	out := t.TempDir()
	r := newRenderer(t, render.WithMissingKeyPolicy(render.MissingKeyEmpty))

	mustRender(t, r, tpl, out, nil)

	got := testsupport.ReadTree(t, out)
	want := map[string]string{"a.txt": "[]"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_RawBlocksAreNotMissingKeys(t *testing.T) {
	tpl := fstest.MapFS{
		"ci.yml": {Data: []byte("name: {{ name }}\n{% raw %}run: ${{ matrix.python }}{% endraw %}\n")},
	}
	out := t.TempDir()

	mustRender(t, newRenderer(t), tpl, out, map[string]string{"name": "acme"})

	got := testsupport.ReadTree(t, out)
	want := map[string]string{"ci.yml": "name: acme\nrun: ${{ matrix.python }}\n"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_MissingKeyInTagExpression(t *testing.T) {
	cases := map[string]string{
		"if":  "{% if use_docker %}docker{% endif %}done",
		"for": "{% for item in items %}{{ item }}{% endfor %}done",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			tpl := fstest.MapFS{"a.txt": {Data: []byte(text)}}
			_, err := newRenderer(t).Render(context.Background(), render.Request{
				Template:   tpl,
				OutputRoot: t.TempDir(),
				Values:     answers.MustNew(nil),
			})

			var missing *render.MissingKeyError
			if !errors.As(err, &missing) || missing.Path != "a.txt" {
				t.Fatalf("expected missing key error for a.txt, got %v", err)
			}
		})
	}
}

func TestRender_BinaryCopiedVerbatim(t *testing.T) {
	binary := []byte{0x89, 'P', 'N', 'G', 0x00, '{', '{', ' ', 'n', 'a', 'm', 'e', ' ', '}', '}'}
	invalidUTF8 := []byte("{{ name }}\xff\xfe")
	tpl := fstest.MapFS{
		"logo.png":  {Data: binary},
		"blob.dat":  {Data: invalidUTF8},
		"notes.txt": {Data: []byte("{{ name }}")},
	}
	out := t.TempDir()

	report := mustRender(t, newRenderer(t), tpl, out, map[string]string{"name": "x"})

	for name, want := range map[string][]byte{"logo.png": binary, "blob.dat": invalidUTF8} {
		got, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s not copied verbatim (-want +got):\n%s", name, diff)
		}
	}
	if report.Count(render.ActionCopied) != 2 || report.Count(render.ActionRendered) != 1 {
		t.Fatalf("unexpected actions %+v", report.Entries)
	}
}

func TestRender_CopyWithoutRender(t *testing.T) {
	workflow := "run: echo ${{ secrets.TOKEN }}\n"
	tpl := fstest.MapFS{
		".github/workflows/ci.yml": {Data: []byte(workflow)},
		"{{ slug }}/raw.html":      {Data: []byte("{{ untouched }}")},
	}
	out := t.TempDir()
	r := newRenderer(t, render.WithCopyWithoutRender(".github/workflows/*", "**/*.html"))

	mustRender(t, r, tpl, out, map[string]string{"slug": "acme"})

	got := testsupport.ReadTree(t, out)
	want := map[string]string{
		".github/":                 "",
		".github/workflows/":       "",
		".github/workflows/ci.yml": workflow,
		"acme/":                    "",
		"acme/raw.html":            "{{ untouched }}",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_Exclude(t *testing.T) {
	tpl := fstest.MapFS{
		"scaffold.yaml":     {Data: []byte("name: x")},
		".git/HEAD":         {Data: []byte("ref")},
		"hooks/post_gen.py": {Data: []byte("print()")},
		"keep.txt":          {Data: []byte("kept")},
	}
	out := t.TempDir()
	r := newRenderer(t, render.WithExclude("scaffold.yaml", "hooks"))

	mustRender(t, r, tpl, out, nil)

	got := testsupport.ReadTree(t, out)
	want := map[string]string{"keep.txt": "kept"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_OverwritePolicies(t *testing.T) {
	tpl := fstest.MapFS{
		"a.txt": {Data: []byte("new {{ v }}")},
		"b.txt": {Data: []byte("new {{ v }}")},
	}
	values := map[string]string{"v": "1"}

	seed := func(t *testing.T) string {
		dir := t.TempDir()
		testsupport.WriteTree(t, dir, map[string]string{"a.txt": "old"})
		return dir
	}

	t.Run("fail", func(t *testing.T) {
		out := seed(t)
		_, err := newRenderer(t).Render(context.Background(), render.Request{
			Template: tpl, OutputRoot: out, Values: answers.MustNew(values),
		})
		var conflict *render.PathConflictError
		if !errors.As(err, &conflict) || !errors.Is(err, render.ErrPathConflict) {
			t.Fatalf("expected path conflict, got %v", err)
		}
		if diff := cmp.Diff(map[string]string{"a.txt": "old"}, testsupport.ReadTree(t, out)); diff != "" {
			t.Fatalf("output modified (-want +got):\n%s", diff)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		out := seed(t)
		mustRender(t, newRenderer(t, render.WithOverwritePolicy(render.OverwriteReplace)), tpl, out, values)
		want := map[string]string{"a.txt": "new 1", "b.txt": "new 1"}
		if diff := cmp.Diff(want, testsupport.ReadTree(t, out)); diff != "" {
			t.Fatalf("tree mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("skip", func(t *testing.T) {
		out := seed(t)
		report := mustRender(t, newRenderer(t, render.WithOverwritePolicy(render.OverwriteSkip)), tpl, out, values)
		want := map[string]string{"a.txt": "old", "b.txt": "new 1"}
		if diff := cmp.Diff(want, testsupport.ReadTree(t, out)); diff != "" {
			t.Fatalf("tree mismatch (-want +got):\n%s", diff)
		}
		if report.Count(render.ActionSkipped) != 1 {
			t.Fatalf("expected one skipped entry, got %+v", report.Entries)
		}
	})
}

func TestRender_OutputRootIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := newRenderer(t, render.WithOverwritePolicy(render.OverwriteReplace)).Render(context.Background(), render.Request{
		Template:   fstest.MapFS{"a": {Data: []byte("a")}},
		OutputRoot: file,
	})
	if !errors.Is(err, render.ErrPathConflict) {
		t.Fatalf("expected ErrPathConflict, got %v", err)
	}
}

func TestRender_CollidingNames(t *testing.T) {
	tpl := fstest.MapFS{
		"{{ a }}.txt": {Data: []byte("1")},
		"{{ b }}.txt": {Data: []byte("2")},
	}
	_, err := newRenderer(t).Render(context.Background(), render.Request{
		Template:   tpl,
		OutputRoot: t.TempDir(),
		Values:     answers.MustNew(map[string]string{"a": "same", "b": "same"}),
	})
	if !errors.Is(err, render.ErrPathConflict) {
		t.Fatalf("expected ErrPathConflict, got %v", err)
	}
}

func TestRender_RejectsPathEscapes(t *testing.T) {
	tpl := fstest.MapFS{
		"{{ name }}.txt": {Data: []byte("x")},
	}
	for _, value := range []string{"../evil", "a/b", ".."} {
		_, err := newRenderer(t).Render(context.Background(), render.Request{
			Template:   tpl,
			OutputRoot: t.TempDir(),
			Values:     answers.MustNew(map[string]string{"name": value}),
		})
		if value == ".." {
			// "...txt" is a legal file name
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", value, err)
			}
			continue
		}
		if !errors.Is(err, render.ErrInvalidPath) {
			t.Fatalf("expected ErrInvalidPath for %q, got %v", value, err)
		}
	}
}

func TestRender_UnreadableTemplateRoot(t *testing.T) {
	_, err := newRenderer(t).Render(context.Background(), render.Request{
		Template:   os.DirFS(filepath.Join(t.TempDir(), "does-not-exist")),
		OutputRoot: t.TempDir(),
	})
	if !errors.Is(err, render.ErrRead) {
		t.Fatalf("expected ErrRead, got %v", err)
	}
}

func TestRender_TemplateSyntaxError(t *testing.T) {
	_, err := newRenderer(t).Render(context.Background(), render.Request{
		Template:   fstest.MapFS{"bad.txt": {Data: []byte("{% if %}")}},
		OutputRoot: t.TempDir(),
	})
	if !errors.Is(err, render.ErrTemplate) {
		t.Fatalf("expected ErrTemplate, got %v", err)
	}
}

func TestRender_PreservesExecutableBit(t *testing.T) {
	tpl := fstest.MapFS{
		"scripts/setup.sh": {Data: []byte("#!/bin/sh\necho {{ name }}\n"), Mode: 0o755},
		"plain.txt":        {Data: []byte("x"), Mode: 0o444},
	}
	out := t.TempDir()
	mustRender(t, newRenderer(t), tpl, out, map[string]string{"name": "x"})

	info, err := os.Stat(filepath.Join(out, "scripts", "setup.sh"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("expected executable mode, got %v", info.Mode().Perm())
	}
	info, err = os.Stat(filepath.Join(out, "plain.txt"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("expected 0644, got %v", info.Mode().Perm())
	}
}

func TestRender_Namespace(t *testing.T) {
	tpl := fstest.MapFS{
		"{{cookiecutter.project_slug}}/main.py": {Data: []byte("# {{ cookiecutter.project_name }}")},
	}
	out := t.TempDir()
	r := newRenderer(t, render.WithNamespace("cookiecutter"))

	mustRender(t, r, tpl, out, map[string]string{"project_slug": "acme", "project_name": "Acme"})

	got := testsupport.ReadTree(t, out)
	if got["acme/main.py"] != "# Acme" {
		t.Fatalf("unexpected tree %v", got)
	}
}

func TestRender_PlainEngine(t *testing.T) {
	tpl := fstest.MapFS{
		"ci.yml": {Data: []byte("name: {{ name }}\n{% not a tag for plain %}\n")},
	}
	out := t.TempDir()
	r := newRenderer(t, render.WithEngine(plain.New()))

	mustRender(t, r, tpl, out, map[string]string{"name": "acme"})

	got := testsupport.ReadTree(t, out)
	if got["ci.yml"] != "name: acme\n{% not a tag for plain %}\n" {
		t.Fatalf("unexpected content %q", got["ci.yml"])
	}
}

func TestRender_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRenderer(t).Render(ctx, render.Request{
		Template:   fstest.MapFS{"a": {Data: []byte("a")}},
		OutputRoot: t.TempDir(),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNew_RejectsInvalidOptions(t *testing.T) {
	if _, err := render.New(render.WithOverwritePolicy("sometimes")); err == nil {
		t.Fatalf("expected policy error")
	}
	if _, err := render.New(render.WithExclude("[")); err == nil || !strings.Contains(err.Error(), "glob") {
		t.Fatalf("expected glob error, got %v", err)
	}
}

func TestParsePolicies(t *testing.T) {
	if p, err := render.ParseOverwritePolicy(" Skip "); err != nil || p != render.OverwriteSkip {
		t.Fatalf("unexpected overwrite policy %q (%v)", p, err)
	}
	if p, err := render.ParseMissingKeyPolicy(""); err != nil || p != render.MissingKeyFail {
		t.Fatalf("unexpected missing-key policy %q (%v)", p, err)
	}
	if _, err := render.ParseMissingKeyPolicy("ignore"); err == nil {
		t.Fatalf("expected error")
	}
}

func newRenderer(t *testing.T, opts ...render.Option) *render.Renderer {
	t.Helper()
	r, err := render.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func mustRender(t *testing.T, r *render.Renderer, tpl fstest.MapFS, out string, values map[string]string) render.Report {
	t.Helper()
	report, err := r.Render(context.Background(), render.Request{
		Template:   tpl,
		OutputRoot: out,
		Values:     answers.MustNew(values),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return report
}
