/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/acronis/go-hostlimit/hostkey"
	"github.com/acronis/go-hostlimit/log"
	"github.com/acronis/go-hostlimit/reqqueue"
)

// CloneHTTPRequest creates a shallow copy of the request along with a deep copy of the Headers.
func CloneHTTPRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = req.Header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	return r
}

// Client is an HTTP client whose outgoing requests are limited globally and per destination host.
type Client struct {
	*http.Client

	// HostLimiter gives access to the admission state (pause, resume, counters).
	HostLimiter *HostLimitingRoundTripper
}

// Opts provides options for NewWithOpts and MustWithOpts functions.
type Opts struct {
	// Delegate is the next RoundTripper in the chain. A clone of http.DefaultTransport is used by default.
	Delegate http.RoundTripper

	// LoggerProvider is a function that provides a context-specific logger.
	LoggerProvider func(ctx context.Context) log.FieldLogger

	// RequestIDProvider is a function that provides a request ID.
	RequestIDProvider func(ctx context.Context) string

	// QueueLogger is used by the request queue for logging its state changes.
	QueueLogger log.FieldLogger

	// MetricsCollector collects metrics of the request queue.
	MetricsCollector reqqueue.MetricsCollector

	// Classifier is used for reducing hostnames to registrable domains.
	Classifier hostkey.Classifier

	// OnDrain is called every time there are no waiting and no in-flight requests.
	OnDrain func()
}

// New creates a new Client with logging, request ID and host limiting round trippers
// and returns an error if any occurs.
func New(cfg *Config) (*Client, error) {
	return NewWithOpts(cfg, Opts{})
}

// Must creates a new Client and panics if any error occurs.
func Must(cfg *Config) *Client {
	client, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// NewWithOpts creates a new Client with options and returns an error if any occurs.
// Round trippers are chained in the following order: request ID, logging, host limiting, delegate.
func NewWithOpts(cfg *Config, opts Opts) (*Client, error) {
	delegate := opts.Delegate
	if delegate == nil {
		delegate = http.DefaultTransport.(*http.Transport).Clone()
	}

	queueCfg := cfg.RequestQueue
	if queueCfg == nil {
		queueCfg = reqqueue.NewDefaultConfig()
	}
	hostLimiter, err := NewHostLimitingRoundTripperWithOpts(delegate, queueCfg.Options(), HostLimitingRoundTripperOpts{
		WaitTimeout:      cfg.WaitTimeout,
		HostRules:        queueCfg.Rules(),
		Classifier:       opts.Classifier,
		OnDrain:          opts.OnDrain,
		LoggerProvider:   opts.LoggerProvider,
		QueueLogger:      opts.QueueLogger,
		MetricsCollector: opts.MetricsCollector,
	})
	if err != nil {
		return nil, fmt.Errorf("create host limiting round tripper: %w", err)
	}

	var rt http.RoundTripper = hostLimiter
	if cfg.Log.Enabled {
		logOpts := cfg.Log.TransportOpts()
		logOpts.LoggerProvider = opts.LoggerProvider
		rt = NewLoggingRoundTripperWithOpts(rt, logOpts)
	}
	rt = NewRequestIDRoundTripperWithOpts(rt, RequestIDRoundTripperOpts{RequestIDProvider: opts.RequestIDProvider})

	return &Client{Client: &http.Client{Transport: rt, Timeout: cfg.Timeout}, HostLimiter: hostLimiter}, nil
}

// MustWithOpts creates a new Client with options and panics if any error occurs.
func MustWithOpts(cfg *Config, opts Opts) *Client {
	client, err := NewWithOpts(cfg, opts)
	if err != nil {
		panic(err)
	}
	return client
}
