package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-scaffold/internal/fsutil"
	"github.com/goliatone/go-scaffold/pkg/answers"
	"github.com/goliatone/go-scaffold/pkg/generator"
	"github.com/goliatone/go-scaffold/pkg/hooks"
	"github.com/goliatone/go-scaffold/pkg/prompt"
	"github.com/goliatone/go-scaffold/pkg/render"
	"github.com/goliatone/go-scaffold/pkg/templates"
)

type newOutput struct {
	Template string            `json:"template"`
	Answers  map[string]string `json:"answers"`
	Report   render.Report     `json:"report"`
	Hooks    []hooks.Result    `json:"hooks,omitempty"`
}

// NewOptions holds the flags of the new command.
type NewOptions struct {
	Output      string
	AnswersFile string
	Set         []string
	NoInput     bool
	Overwrite   string
	Missing     string
	Engine      string
	SkipHooks   bool
	SaveAnswers string
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NewOptions{}

	cmd := &cobra.Command{
		Use:   "new <template>",
		Short: "Render a template into a new project directory",
		Long: `Render a template into a new project directory.

<template> is a directory on disk or builtin:<name> for a template shipped
with scaffold (see "scaffold templates"). Answers are taken, in increasing
precedence, from manifest defaults, --answers, --set and interactive
prompts for anything still unanswered.`,
		Example: `  scaffold new builtin:python-project -o acme --set project_name="Acme Tools"
  scaffold new ./my-template -o out --answers answers.yaml --no-input`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(rootOpts, opts, args[0], cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Output, "output", "o", "", "output directory (required)")
	flags.StringVar(&opts.AnswersFile, "answers", "", "answers file (YAML or JSON)")
	flags.StringArrayVar(&opts.Set, "set", nil, "answer as key=value (repeatable)")
	flags.BoolVar(&opts.NoInput, "no-input", false, "never prompt; use defaults for unanswered variables")
	flags.StringVar(&opts.Overwrite, "overwrite", string(render.OverwriteFail), "existing output handling (fail|overwrite|skip)")
	flags.StringVar(&opts.Missing, "missing", string(render.MissingKeyFail), "missing key handling (error|empty)")
	flags.StringVar(&opts.Engine, "engine", generator.DefaultEngine, "template engine (pongo2|plain)")
	flags.BoolVar(&opts.SkipHooks, "skip-hooks", false, "do not run post-render hooks")
	flags.StringVar(&opts.SaveAnswers, "save-answers", "", "write the resolved answers to this file")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runNew(rootOpts *RootOptions, opts *NewOptions, ref string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := rootOpts.loggerFor(cmd)

	overwrite, err := render.ParseOverwritePolicy(opts.Overwrite)
	if err != nil {
		return err
	}
	missing, err := render.ParseMissingKeyPolicy(opts.Missing)
	if err != nil {
		return err
	}

	var fromFile answers.Mapping
	if opts.AnswersFile != "" {
		fromFile, err = answers.Load(ctx, answers.SourceFromFile(opts.AnswersFile))
		if err != nil {
			return err
		}
	}
	assignments, err := answers.ParseAssignments(opts.Set)
	if err != nil {
		return err
	}

	gen, err := generator.New(
		generator.WithEngine(opts.Engine),
		generator.WithOverwritePolicy(overwrite),
		generator.WithMissingKeyPolicy(missing),
		generator.WithInteractive(!opts.NoInput),
		generator.WithPromptDriver(prompt.NewSurveyDriver(cmd.OutOrStdout())),
		generator.WithSkipHooks(opts.SkipHooks),
		generator.WithLogger(log),
	)
	if err != nil {
		return err
	}

	result, err := gen.Generate(ctx, generator.Request{
		Source:      templates.Resolve(ref),
		OutputRoot:  opts.Output,
		Answers:     fromFile,
		Assignments: assignments,
	})
	if err != nil {
		if len(result.Report.Entries) > 0 {
			log.Warn("output left partially written", "output", opts.Output, "entries", len(result.Report.Entries))
		}
		return err
	}

	if opts.SaveAnswers != "" {
		if err := saveAnswers(opts.SaveAnswers, result.Values); err != nil {
			return err
		}
		log.Info("saved answers", "path", opts.SaveAnswers)
	}

	if rootOpts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), newOutput{
			Template: ref,
			Answers:  result.Values.Map(),
			Report:   result.Report,
			Hooks:    result.Hooks,
		})
	}
	return printNewSummary(cmd.OutOrStdout(), result)
}

func saveAnswers(path string, values answers.Mapping) error {
	var buf bytes.Buffer
	if err := answers.Write(&buf, values, answers.FormatForPath(path)); err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save answers: %w", err)
	}
	return nil
}

func printNewSummary(w io.Writer, result generator.Result) error {
	report := result.Report
	for _, entry := range report.Entries {
		if entry.Kind == render.KindDir {
			continue
		}
		if _, err := fmt.Fprintf(w, "  %-8s %s\n", entry.Action, entry.Path); err != nil {
			return err
		}
	}
	for _, hook := range result.Hooks {
		if _, err := fmt.Fprintf(w, "  hook     %s (%s)\n", hook.Hook, hook.Status); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Rendered %d, copied %d, skipped %d into %s\n",
		report.Count(render.ActionRendered),
		report.Count(render.ActionCopied),
		report.Count(render.ActionSkipped),
		report.OutputRoot,
	)
	return err
}
