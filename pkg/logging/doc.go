// Package logging provides the ambient structured-logging surface used
// across pandakernel: a package-level slog logger, level-gated helpers
// (Debug/Info/Warn/Error), and a subsystem tag on every call site.
//
// This is deliberately separate from the kernel's own audit logs
// (internal/capability, internal/budget, internal/kernel) — those are
// queryable, in-memory, append-only records consumed by tests and
// internal/audit's Prometheus collector. This package is plain operator-
// facing text logging, initialized once at host-runtime startup via
// InitForCLI and used thereafter through the package-level helpers.
package logging
