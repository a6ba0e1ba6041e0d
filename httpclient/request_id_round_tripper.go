/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"net/http"

	"github.com/rs/xid"
)

// RequestIDHeader is the HTTP header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// RequestIDRoundTripperOpts represents options for RequestIDRoundTripper.
type RequestIDRoundTripperOpts struct {
	// RequestIDProvider is a function that provides a request ID.
	// GetRequestIDFromContext is used by default.
	RequestIDProvider func(ctx context.Context) string
}

// RequestIDRoundTripper sets X-Request-ID header in outgoing requests that don't have it yet.
// When no request ID is provided, a new one is generated.
type RequestIDRoundTripper struct {
	Delegate http.RoundTripper
	Opts     RequestIDRoundTripperOpts
}

// NewRequestIDRoundTripper creates an HTTP transport with X-Request-ID header support.
func NewRequestIDRoundTripper(delegate http.RoundTripper) *RequestIDRoundTripper {
	return NewRequestIDRoundTripperWithOpts(delegate, RequestIDRoundTripperOpts{})
}

// NewRequestIDRoundTripperWithOpts creates an HTTP transport with X-Request-ID header support and options.
func NewRequestIDRoundTripperWithOpts(delegate http.RoundTripper, opts RequestIDRoundTripperOpts) *RequestIDRoundTripper {
	return &RequestIDRoundTripper{Delegate: delegate, Opts: opts}
}

// RoundTrip adds X-Request-ID header to the request.
func (rt *RequestIDRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get(RequestIDHeader) != "" {
		return rt.Delegate.RoundTrip(r)
	}

	requestID := rt.requestID(r.Context())
	if requestID == "" {
		requestID = xid.New().String()
	}
	r = CloneHTTPRequest(r)
	r.Header.Set(RequestIDHeader, requestID)
	return rt.Delegate.RoundTrip(r)
}

func (rt *RequestIDRoundTripper) requestID(ctx context.Context) string {
	if rt.Opts.RequestIDProvider != nil {
		return rt.Opts.RequestIDProvider(ctx)
	}
	return GetRequestIDFromContext(ctx)
}
