/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"

	"github.com/acronis/go-hostlimit/log"
	"github.com/acronis/go-hostlimit/reqqueue"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyQueueOverrides
	ctxKeyLogger
)

// NewContextWithRequestID creates a new context with request ID.
// RequestIDRoundTripper puts it into the X-Request-ID header of outgoing requests.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// GetRequestIDFromContext extracts request ID from the context.
func GetRequestIDFromContext(ctx context.Context) string {
	if value, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return value
	}
	return ""
}

// NewContextWithQueueOverrides returns a derived context that carries queue option overrides
// (per-host limit, rate limit, host key options) for a single request.
func NewContextWithQueueOverrides(ctx context.Context, overrides *reqqueue.Overrides) context.Context {
	return context.WithValue(ctx, ctxKeyQueueOverrides, overrides)
}

// GetQueueOverridesFromContext extracts queue option overrides from the context.
func GetQueueOverridesFromContext(ctx context.Context) *reqqueue.Overrides {
	overrides, _ := ctx.Value(ctxKeyQueueOverrides).(*reqqueue.Overrides)
	return overrides
}

// NewContextWithLogger creates a new context with logger.
func NewContextWithLogger(ctx context.Context, logger log.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, logger)
}

// GetLoggerFromContext extracts logger from the context.
// A disabled logger is returned if there is no logger in the context.
func GetLoggerFromContext(ctx context.Context) log.FieldLogger {
	if logger, ok := ctx.Value(ctxKeyLogger).(log.FieldLogger); ok && logger != nil {
		return logger
	}
	return log.NewDisabledLogger()
}
