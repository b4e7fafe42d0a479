// Package logging assembles the structured slog loggers used across sonus.
//
// It owns the console and JSON handlers, centralizes level parsing and output
// plumbing, and exposes a no-op logger for tests and wiring code that cannot
// fail. Components attach a "component" attribute which the console handler
// renders as a line prefix.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
