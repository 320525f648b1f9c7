// Package logging constructs the slog loggers used across bdpl: a pretty
// console handler for interactive use, a JSON handler for machine capture,
// and typed attribute helpers so call sites stay terse and consistent.
package logging
