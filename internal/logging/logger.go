package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const serviceName = "buspass"

// ParseLevel maps LOG_LEVEL onto a slog level. "warning" is accepted as an
// alias of warn; anything unrecognised means info.
func ParseLevel(level string) slog.Level {
	level = strings.TrimSpace(level)
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// New returns the portal's JSON logger on stdout. Every line carries the
// service name and, when set, the APP_ENV it runs under.
func New(level, env string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, env)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, level, env string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})).
		With(slog.String("service", serviceName))
	if env != "" {
		logger = logger.With(slog.String("env", env))
	}
	return logger
}

// Discard drops everything; handlers and services take it in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
