// Package logging assembles structured slog loggers and formatting helpers used
// across subfetch.
//
// It owns the console and JSON handlers, optional size-rotated file output,
// and context-aware helpers that tag lines with the run ID, video, and
// pipeline stage carried on a context. NewNop returns a discarding logger for
// tests and wiring code that cannot fail.
package logging
