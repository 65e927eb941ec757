// Package logging assembles structured slog loggers for chatshot.
//
// It owns the console and JSON handlers, maps configured levels, and exposes
// context helpers so pipeline code tags each line with the request ID and
// stage carried on the context. A no-op logger is provided for tests and for
// wiring code that runs before configuration is loaded.
package logging
