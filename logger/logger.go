package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const logFileName = "rabbit.log"

type Logger interface {
	Info(msg string, keyvals ...interface{})

	Warn(msg string, keyvals ...interface{})

	Error(msg string, keyvals ...interface{})

	Debug(msg string, keyvals ...interface{})
}

func New() Logger {
	return newJSONLogger(os.Stderr, slog.LevelInfo)
}

// NewFile returns a logger writing to a daily rolling file inside dir.
// The returned closer flushes and closes the current file.
func NewFile(dir string, level string) (Logger, io.Closer, error) {
	writer, err := NewDailyWriter(dir, logFileName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create log writer: %w", err)
	}

	return newJSONLogger(writer, ParseLevel(level)), writer, nil
}

func newJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level, // minimum log level
		AddSource: true,  // include file + line number
	}
	handler := slog.NewJSONHandler(w, opts)
	return slog.New(handler)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
