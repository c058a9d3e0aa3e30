package hostsdk

import (
	"context"
	"log/slog"
	"time"
)

// Middleware is a function that wraps a ByteHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next ByteHandler) ByteHandler

// PanicRecoveryMiddleware returns a middleware that catches panics and converts
// them to structured ErrorResponse JSON instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp = NewPanicError(r).ToJSON()
					err = nil // Return JSON error, not Go error
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware returns a middleware that logs host function invocations
// with their duration.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			funcName := "unknown"
			if hc, ok := ctx.(HostContext); ok {
				funcName = hc.FunctionName()
			}

			start := time.Now()
			resp, err := next(ctx, payload)
			elapsed := time.Since(start)

			if err != nil {
				logger.Debug("host function failed",
					"function", funcName,
					"duration", elapsed,
					"error", err)
			} else {
				logger.Debug("host function completed",
					"function", funcName,
					"duration", elapsed)
			}
			return resp, err
		}
	}
}
