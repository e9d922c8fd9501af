package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-scaffold/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel string
	Format   string // "json" | "text"

	log logger.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the scaffold CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Render project templates into new directories",
		Long: `scaffold materialises a new project from a template directory and a set
of answers. Tokens such as {{ project_slug }} are substituted in file names
and file contents; binary files are copied byte for byte.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			l, err := logger.New(cmd.ErrOrStderr(), opts.LogLevel, logger.Format(opts.Format))
			if err != nil {
				return err
			}
			opts.log = l
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewNewCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewTemplatesCommand(opts))

	return cmd
}

// loggerFor returns the logger configured by the root command, building a
// default one when a subcommand runs on its own.
func (o *RootOptions) loggerFor(cmd *cobra.Command) logger.Logger {
	if o.log == nil {
		l, err := logger.New(cmd.ErrOrStderr(), o.LogLevel, logger.FormatText)
		if err != nil {
			l, _ = logger.New(cmd.ErrOrStderr(), "warn", logger.FormatText)
		}
		o.log = l
	}
	return o.log
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
