// Package logging defines the minimal structured-logging contract used across
// the server. The only implementation in this repo wraps log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key-value pairs:
//
//	log.Info(ctx, "issuing session pair", "owner", ownerID)
type Logger interface {
	// Debug logs diagnostic details that are too noisy for production.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions. Rejected credentials are
	// logged at this level, with the internal cause that the HTTP layer
	// deliberately hides.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}
