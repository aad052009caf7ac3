package logging

import (
	"context"
	"log/slog"
	"path/filepath"
)

type Attr = slog.Attr

func String(key string, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

// Ordinal tags a record with an item's catalog position.
func Ordinal(n int) Attr { return slog.Int(FieldOrdinal, n) }

// File records only the base name of a cache path; the directory is
// already carried by the page fields.
func File(path string) Attr { return slog.String("file", filepath.Base(path)) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func NewNop() *slog.Logger {
	return slog.New(discard{})
}

// NewComponentLogger tags logger with a component name. A nil logger
// yields a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool { return false }

func (discard) Handle(context.Context, slog.Record) error { return nil }

func (discard) WithAttrs([]slog.Attr) slog.Handler { return discard{} }

func (discard) WithGroup(string) slog.Handler { return discard{} }
