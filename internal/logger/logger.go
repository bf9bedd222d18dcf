package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup returns a JSON slog.Logger writing to w at the given level.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetupDefault installs a JSON logger as the slog default and returns it.
// Lambda forwards stdout to CloudWatch Logs, so nil means os.Stdout.
func SetupDefault(w io.Writer, level slog.Level) *slog.Logger {
	l := Setup(w, level)
	slog.SetDefault(l)
	return l
}
