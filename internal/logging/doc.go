// Package logging assembles structured slog loggers and formatting helpers used
// across bisub.
//
// It owns the console and JSON handlers, tees records into an optional JSON
// log file, and exposes context-aware helpers so render and preview code can
// tag log lines with job IDs, stages, and correlation IDs. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
