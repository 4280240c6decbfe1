// Package logging is the structured logger shared by the gophdrop client and
// server. SlogLogger is the only implementation.
package logging

import "context"

// Logger takes a message plus alternating key/value args:
//
//	logger.Info(ctx, "upload stored", "path", path, "size", n)
//
// Debug is for per-request and per-chunk chatter; Warn for conditions the
// caller recovered from, such as a bucket that could not be listed.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds args to every record of the returned logger.
	With(args ...any) Logger
}

var _ Logger = (*SlogLogger)(nil)
