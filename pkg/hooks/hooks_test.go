package hooks

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-scaffold/pkg/answers"
	"github.com/goliatone/go-scaffold/pkg/render/template/gotemplate"
)

type call struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
}

type stubRunner struct {
	calls   []call
	results map[string]CmdResult
	errs    map[string]error
}

func (s *stubRunner) Run(_ context.Context, name string, args []string, opts RunOpts) (CmdResult, error) {
	s.calls = append(s.calls, call{Name: name, Args: args, Dir: opts.Dir, Env: opts.Env})
	if err := s.errs[name]; err != nil {
		return CmdResult{}, err
	}
	return s.results[name], nil
}

func TestExecute_RendersArgumentsAndRunsInRoot(t *testing.T) {
	runner := &stubRunner{}
	executor := NewExecutor(WithRunner(runner))
	engine := newEngine(t)

	values := answers.MustNew(map[string]string{"project_slug": "acme"})
	hooks := []Hook{
		{Name: "git init", Run: []string{"git", "init", "-q"}},
		{Run: []string{"echo", "{{ project_slug }}"}},
	}

	results, err := executor.Execute(context.Background(), "/tmp/out", hooks, values, "", engine)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	wantCalls := []call{
		{Name: "git", Args: []string{"init", "-q"}, Dir: "/tmp/out", Env: map[string]string{OutputEnv: "/tmp/out"}},
		{Name: "echo", Args: []string{"acme"}, Dir: "/tmp/out", Env: map[string]string{OutputEnv: "/tmp/out"}},
	}
	if diff := cmp.Diff(wantCalls, runner.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}

	wantResults := []Result{
		{Hook: "git init", Command: []string{"git", "init", "-q"}, Status: StatusOK},
		{Hook: "echo {{ project_slug }}", Command: []string{"echo", "acme"}, Status: StatusOK},
	}
	if diff := cmp.Diff(wantResults, results); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_RequiredHookFailureStops(t *testing.T) {
	runner := &stubRunner{results: map[string]CmdResult{"false": {ExitCode: 1, Stderr: "boom\n"}}}
	executor := NewExecutor(WithRunner(runner))

	hooks := []Hook{
		{Name: "fail", Run: []string{"false"}},
		{Name: "never", Run: []string{"true"}},
	}
	results, err := executor.Execute(context.Background(), "/out", hooks, answers.MustNew(nil), "", newEngine(t))
	if !errors.Is(err, ErrHookFailed) {
		t.Fatalf("expected ErrHookFailed, got %v", err)
	}
	var hookErr *HookError
	if !errors.As(err, &hookErr) || hookErr.ExitCode != 1 || hookErr.Hook != "fail" {
		t.Fatalf("unexpected hook error %+v", hookErr)
	}
	if len(runner.calls) != 1 || len(results) != 1 || results[0].Status != StatusFailed {
		t.Fatalf("expected execution to stop after first hook, calls=%d results=%+v", len(runner.calls), results)
	}
}

func TestExecute_OptionalHooksTolerated(t *testing.T) {
	runner := &stubRunner{
		results: map[string]CmdResult{"flaky": {ExitCode: 3}},
		errs:    map[string]error{"pre-commit": exec.ErrNotFound},
	}
	executor := NewExecutor(WithRunner(runner))

	hooks := []Hook{
		{Name: "install hooks", Run: []string{"pre-commit", "install", "--install-hooks"}, Optional: true},
		{Name: "flaky", Run: []string{"flaky"}, Optional: true},
		{Name: "ok", Run: []string{"true"}},
	}
	results, err := executor.Execute(context.Background(), "/out", hooks, answers.MustNew(nil), "", newEngine(t))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	got := make([]Status, 0, len(results))
	for _, r := range results {
		got = append(got, r.Status)
	}
	want := []Status{StatusSkipped, StatusFailed, StatusOK}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_RejectsEmptyCommand(t *testing.T) {
	_, err := NewExecutor(WithRunner(&stubRunner{})).Execute(context.Background(), "/out", []Hook{{Name: "empty"}}, answers.MustNew(nil), "", newEngine(t))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()
	engine, err := gotemplate.New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
