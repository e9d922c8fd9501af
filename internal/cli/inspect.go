package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-scaffold/pkg/generator"
	"github.com/goliatone/go-scaffold/pkg/manifest"
	"github.com/goliatone/go-scaffold/pkg/templates"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <template>",
		Short: "Show the variables a template declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := generator.New(generator.WithLogger(rootOpts.loggerFor(cmd)))
			if err != nil {
				return err
			}
			m, err := gen.Inspect(cmd.Context(), templates.Resolve(args[0]))
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), m)
			}
			return printManifest(cmd.OutOrStdout(), args[0], m)
		},
	}
}

func printManifest(w io.Writer, ref string, m manifest.Manifest) error {
	name := m.Name
	if name == "" {
		name = ref
	}
	fmt.Fprintf(w, "%s\n", name)
	if m.Description != "" {
		fmt.Fprintf(w, "%s\n", m.Description)
	}
	if m.File == "" {
		fmt.Fprintln(w, "no manifest; every token must be answered with --answers or --set")
		return nil
	}
	fmt.Fprintf(w, "manifest: %s (%s)\n\n", m.File, m.Format)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIABLE\tDEFAULT\tCHOICES\tPROMPT")
	for _, v := range m.Variables {
		def := v.Default
		if v.Secret {
			def = "(secret)"
		}
		if v.Hidden {
			def += " (hidden)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Name, def, strings.Join(v.Choices, ", "), v.Label())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(m.Hooks) > 0 {
		fmt.Fprintln(w, "\nhooks:")
		for _, h := range m.Hooks {
			suffix := ""
			if h.Optional {
				suffix = " (optional)"
			}
			fmt.Fprintf(w, "  %s: %s%s\n", h.Label(), strings.Join(h.Run, " "), suffix)
		}
	}
	return nil
}
