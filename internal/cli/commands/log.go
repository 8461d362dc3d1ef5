package commands

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// newLogger returns a text logger for diagnostics on w. Debug records are
// only emitted when verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// colorEnabled reports whether styled output should be written to w.
// Only terminals get color, and NO_COLOR turns it off.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
