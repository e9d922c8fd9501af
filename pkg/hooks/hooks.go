// Package hooks runs post-render commands inside a freshly rendered project,
// for example installing git hooks with `pre-commit install`.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-scaffold/pkg/answers"
	"github.com/goliatone/go-scaffold/pkg/render/template"
)

// OutputEnv is set to the output root for every hook.
const OutputEnv = "SCAFFOLD_OUTPUT"

// ErrHookFailed matches every HookError.
var ErrHookFailed = errors.New("hooks: hook failed")

// Hook is a command declared by a template manifest.
type Hook struct {
	Name string `yaml:"name" json:"name"`
	// Run is the argv of the command. Each element is a template rendered
	// against the answers before execution.
	Run []string `yaml:"run" json:"run"`
	// Optional hooks may fail (or be missing from PATH) without failing the
	// pass.
	Optional bool `yaml:"optional" json:"optional"`
}

// Label returns Name, or the command line when no name was given.
func (h Hook) Label() string {
	if strings.TrimSpace(h.Name) != "" {
		return h.Name
	}
	return strings.Join(h.Run, " ")
}

// Validate reports hooks with no command.
func (h Hook) Validate() error {
	if len(h.Run) == 0 || strings.TrimSpace(h.Run[0]) == "" {
		return fmt.Errorf("hooks: hook %q has no command", h.Name)
	}
	return nil
}

// CmdResult holds the result of a command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunOpts holds optional parameters for command execution.
type RunOpts struct {
	Dir string
	Env map[string]string
}

// Runner runs external commands. Run returns an error only when the command
// could not be executed at all; a non-zero exit is reported in CmdResult.
type Runner interface {
	Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct{}

// NewExecRunner creates an ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and captures stdout/stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd.Env = cmd.Environ()
		for k, v := range opts.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	err := cmd.Run()
	result := CmdResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}
	return result, nil
}

// HookError reports a required hook that could not run or exited non-zero.
type HookError struct {
	Hook     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *HookError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hooks: %s: %v", e.Hook, e.Err)
	}
	msg := fmt.Sprintf("hooks: %s exited with status %d", e.Hook, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *HookError) Unwrap() error { return e.Err }

func (e *HookError) Is(target error) bool {
	return target == ErrHookFailed
}

// Status records the outcome of one hook.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result describes one executed hook.
type Result struct {
	Hook     string   `json:"hook"`
	Command  []string `json:"command"`
	Status   Status   `json:"status"`
	ExitCode int      `json:"exit_code"`
}

// Executor runs a manifest's hooks in order.
type Executor struct {
	runner Runner
	logger *log.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithRunner overrides the command runner.
func WithRunner(runner Runner) Option {
	return func(e *Executor) {
		if runner != nil {
			e.runner = runner
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor builds an Executor backed by ExecRunner unless overridden.
func NewExecutor(options ...Option) *Executor {
	e := &Executor{
		runner: NewExecRunner(),
		logger: log.New(io.Discard),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Execute renders each hook's argv against values and runs it with root as
// working directory. The first failing required hook stops execution.
func (e *Executor) Execute(ctx context.Context, root string, hooks []Hook, values answers.Mapping, namespace string, engine template.TemplateRenderer) ([]Result, error) {
	results := make([]Result, 0, len(hooks))
	data := values.Context(namespace)

	for _, hook := range hooks {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if err := hook.Validate(); err != nil {
			return results, err
		}

		argv := make([]string, len(hook.Run))
		for i, arg := range hook.Run {
			rendered, err := engine.RenderString(arg, data)
			if err != nil {
				return results, &HookError{Hook: hook.Label(), Err: fmt.Errorf("render argument %d: %w", i, err)}
			}
			argv[i] = rendered
		}

		res := Result{Hook: hook.Label(), Command: argv}
		e.logger.Info("running hook", "hook", hook.Label(), "command", strings.Join(argv, " "))

		out, err := e.runner.Run(ctx, argv[0], argv[1:], RunOpts{
			Dir: root,
			Env: map[string]string{OutputEnv: root},
		})
		res.ExitCode = out.ExitCode

		switch {
		case err != nil && hook.Optional:
			e.logger.Warn("optional hook could not run", "hook", hook.Label(), "err", err)
			res.Status = StatusSkipped
		case err != nil:
			res.Status = StatusFailed
			results = append(results, res)
			return results, &HookError{Hook: hook.Label(), Err: err}
		case out.ExitCode != 0 && hook.Optional:
			e.logger.Warn("optional hook failed", "hook", hook.Label(), "exit", out.ExitCode, "stderr", strings.TrimSpace(out.Stderr))
			res.Status = StatusFailed
		case out.ExitCode != 0:
			res.Status = StatusFailed
			results = append(results, res)
			return results, &HookError{Hook: hook.Label(), ExitCode: out.ExitCode, Stderr: out.Stderr}
		default:
			res.Status = StatusOK
		}
		results = append(results, res)
	}
	return results, nil
}
