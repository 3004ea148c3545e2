package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Init installs the process logger. Production defaults to JSON at info level,
// everything else to text at debug; level and format override either default.
func Init(env, level, format string) *slog.Logger {
	return InitWithWriter(os.Stdout, env, level, format)
}

func InitWithWriter(w io.Writer, env, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	useJSON := false
	if env == "production" {
		opts.Level = slog.LevelInfo
		useJSON = true
	}
	if level != "" {
		opts.Level = parseLevel(level)
	}
	switch strings.ToLower(format) {
	case "json":
		useJSON = true
	case "text":
		useJSON = false
	}

	var handler slog.Handler
	if useJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development", "", "")
	}
	return defaultLogger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
