package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

type Logger = *log.Logger

// Format selects how log records are encoded.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// New builds a logger writing to w (stderr when nil). level is one of
// debug, info, warn, error; an empty level means info.
func New(w io.Writer, level string, format Format) (Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	opts := log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Prefix:          "scaffold",
	}

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		opts.Level = log.DebugLevel
	case "", "info":
		opts.Level = log.InfoLevel
	case "warn", "warning":
		opts.Level = log.WarnLevel
	case "error":
		opts.Level = log.ErrorLevel
	default:
		return nil, fmt.Errorf("logger: unknown level %q", level)
	}

	switch format {
	case "", FormatText:
		opts.Formatter = log.TextFormatter
	case FormatJSON:
		opts.Formatter = log.JSONFormatter
	default:
		return nil, fmt.Errorf("logger: unknown format %q (want text or json)", format)
	}

	return log.NewWithOptions(w, opts), nil
}
