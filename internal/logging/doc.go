// Package logging assembles structured slog loggers and formatting helpers used
// across ghplayer.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so request handlers and background jobs tag
// their lines with request and job identifiers. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
