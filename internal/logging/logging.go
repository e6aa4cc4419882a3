// Package logging builds the slog loggers used by metsim commands and the
// loader. Every record from one command carries the command name and, where
// a run document is involved, its path.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/HansKimDWR/MetSim/internal/config"
	mserr "github.com/HansKimDWR/MetSim/internal/errors"
)

// NewFromConfig creates a logger writing to w with the level and format of
// cfg. When a log file is configured, relative to baseDir unless absolute,
// records are also appended to it and the returned Closer closes the file.
func NewFromConfig(cfg *config.Config, baseDir string, w io.Writer) (*slog.Logger, io.Closer, error) {
	level := parseLevel(cfg.Logging.Level)

	logPath := cfg.LogFile(baseDir)
	if logPath == "" {
		return slog.New(newHandler(cfg.Logging.Format, w, level)), nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, nil, mserr.IOWriteError(logPath, err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, mserr.IOWriteError(logPath, err)
	}
	return slog.New(newHandler(cfg.Logging.Format, io.MultiWriter(w, file), level)), file, nil
}

// NewDiscard creates a logger that drops every record. Library code falls
// back to it when the caller passes no logger.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 100,
	}))
}

// parseLevel converts config log level to slog.Level.
func parseLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelInfo:
		return slog.LevelInfo
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func newHandler(format config.LogFormat, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// WithFields returns a logger with the given fields added.
func WithFields(logger *slog.Logger, fields ...any) *slog.Logger {
	return logger.With(fields...)
}

// WithDocument tags records with the run document being processed.
func WithDocument(logger *slog.Logger, path string) *slog.Logger {
	return WithFields(logger, "document", path)
}

// WithCommand tags records with the CLI command that produced them.
func WithCommand(logger *slog.Logger, name string) *slog.Logger {
	return WithFields(logger, "command", name)
}
