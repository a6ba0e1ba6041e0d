/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/acronis/go-hostlimit/log"
)

// LoggingMode represents a mode of logging.
type LoggingMode string

// Logging modes.
const (
	LoggingModeNone   LoggingMode = "none"
	LoggingModeAll    LoggingMode = "all"
	LoggingModeFailed LoggingMode = "failed"
)

// IsValid checks if the logger mode is valid.
func (lm LoggingMode) IsValid() bool {
	switch lm {
	case LoggingModeNone, LoggingModeAll, LoggingModeFailed:
		return true
	}
	return false
}

// LoggingRoundTripperOpts represents an options for LoggingRoundTripper.
type LoggingRoundTripperOpts struct {
	// LoggerProvider is a function that provides a context-specific logger.
	// GetLoggerFromContext is used by default.
	LoggerProvider func(ctx context.Context) log.FieldLogger

	// Mode of logging: none, all, failed. "all" is used by default.
	Mode LoggingMode

	// SlowRequestThreshold is a threshold for slow requests. Faster requests are not logged.
	SlowRequestThreshold time.Duration
}

// LoggingRoundTripper implements http.RoundTripper for logging requests.
type LoggingRoundTripper struct {
	Delegate http.RoundTripper
	Opts     LoggingRoundTripperOpts
}

// NewLoggingRoundTripper creates an HTTP transport that logs requests.
func NewLoggingRoundTripper(delegate http.RoundTripper) *LoggingRoundTripper {
	return NewLoggingRoundTripperWithOpts(delegate, LoggingRoundTripperOpts{})
}

// NewLoggingRoundTripperWithOpts creates an HTTP transport that logs requests with options.
func NewLoggingRoundTripperWithOpts(delegate http.RoundTripper, opts LoggingRoundTripperOpts) *LoggingRoundTripper {
	if opts.Mode == "" {
		opts.Mode = LoggingModeAll
	}
	return &LoggingRoundTripper{Delegate: delegate, Opts: opts}
}

func (rt *LoggingRoundTripper) getLogger(ctx context.Context) log.FieldLogger {
	if rt.Opts.LoggerProvider != nil {
		return rt.Opts.LoggerProvider(ctx)
	}
	return GetLoggerFromContext(ctx)
}

// RoundTrip adds logging capabilities to the HTTP transport.
// The time spent waiting for admission by HostLimitingRoundTripper (if it's the delegate) is included.
func (rt *LoggingRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	if rt.Opts.Mode == LoggingModeNone {
		return rt.Delegate.RoundTrip(r)
	}

	start := time.Now()
	resp, err := rt.Delegate.RoundTrip(r)
	elapsed := time.Since(start)

	logger := rt.getLogger(r.Context())
	if logger == nil || elapsed < rt.Opts.SlowRequestThreshold {
		return resp, err
	}
	if rt.Opts.Mode == LoggingModeFailed && err == nil && resp.StatusCode < http.StatusBadRequest {
		return resp, err
	}

	fields := []log.Field{
		log.String("method", r.Method),
		log.String("url", r.URL.String()),
		log.String("request_id", r.Header.Get(RequestIDHeader)),
		log.DurationIn(elapsed, time.Millisecond),
	}
	if err != nil {
		logger.Error("client http request failed", append(fields, log.Error(err))...)
		return resp, err
	}
	logger.Info("client http request done", append(fields, log.Int("status", resp.StatusCode))...)
	return resp, nil
}
