// Package logging assembles structured slog loggers used across koneko.
//
// It owns the console and JSON handlers, level parsing, output routing (a log
// file by default, since the terminal is busy drawing images), and
// context-aware helpers that tag lines with the session ID, collection kind,
// page and pipeline stage. NewNop gives tests and wiring code a logger that
// cannot fail.
package logging
