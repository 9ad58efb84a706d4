// internal/cmdutil/log.go
package cmdutil

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// NewLogger returns a slog logger backed by a charm logger on w.
// format is "text" or "json"; level is debug, info, warn or error.
// quiet drops everything below error.
func NewLogger(w io.Writer, level, format string, quiet bool) (*slog.Logger, error) {
	lvl, err := charmlog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q (want debug, info, warn or error)", level)
	}
	if quiet {
		lvl = charmlog.ErrorLevel
	}
	cl := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "dnastore",
	})
	switch format {
	case "text", "":
		cl.SetFormatter(charmlog.TextFormatter)
	case "json":
		cl.SetFormatter(charmlog.JSONFormatter)
	default:
		return nil, fmt.Errorf("invalid --log-format %q (want text or json)", format)
	}
	return slog.New(cl), nil
}

// Warnf logs a formatted warning; it keeps one-line call sites short.
func Warnf(l *slog.Logger, format string, a ...any) {
	l.Warn(fmt.Sprintf(format, a...))
}
