/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/acronis/go-hostlimit/hostkey"
	"github.com/acronis/go-hostlimit/log"
	"github.com/acronis/go-hostlimit/reqqueue"
)

// HostLimitingRoundTripperOpts represents options for HostLimitingRoundTripper.
type HostLimitingRoundTripperOpts struct {
	// WaitTimeout limits the time a request may wait for admission.
	// Zero means the request waits until its context is done.
	WaitTimeout time.Duration

	// HostRules override queue options for matching hosts.
	HostRules []reqqueue.HostRule

	// Classifier is used for reducing hostnames to registrable domains. See reqqueue.QueueOpts.
	Classifier hostkey.Classifier

	// OnDrain is called every time there are no waiting and no in-flight requests.
	OnDrain func()

	// LoggerProvider is a function that provides a context-specific logger.
	// GetLoggerFromContext is used by default.
	LoggerProvider func(ctx context.Context) log.FieldLogger

	// QueueLogger is used by the underlying queue for logging its state changes.
	QueueLogger log.FieldLogger

	// MetricsCollector collects metrics of the underlying queue.
	MetricsCollector reqqueue.MetricsCollector
}

// HostLimitingRoundTripper wraps implementing http.RoundTripper interface object
// and bounds the number of in-flight requests globally and per destination host.
// A request is in flight from its admission until its response body is closed
// (or until the delegate returns an error).
type HostLimitingRoundTripper struct {
	Delegate    http.RoundTripper
	WaitTimeout time.Duration

	queue          *reqqueue.Queue[*pendingRequest]
	loggerProvider func(ctx context.Context) log.FieldLogger
	waiting        *atomic.Int32
}

type pendingRequest struct {
	admitted chan func()
}

// NewHostLimitingRoundTripper creates a new HostLimitingRoundTripper with the specified queue options.
func NewHostLimitingRoundTripper(delegate http.RoundTripper, queueOpts reqqueue.Options) (*HostLimitingRoundTripper, error) {
	return NewHostLimitingRoundTripperWithOpts(delegate, queueOpts, HostLimitingRoundTripperOpts{})
}

// NewHostLimitingRoundTripperWithOpts creates a new HostLimitingRoundTripper with the specified queue options
// and additional options.
func NewHostLimitingRoundTripperWithOpts(
	delegate http.RoundTripper, queueOpts reqqueue.Options, opts HostLimitingRoundTripperOpts,
) (*HostLimitingRoundTripper, error) {
	if opts.WaitTimeout < 0 {
		return nil, fmt.Errorf("wait timeout should not be negative")
	}

	handler := reqqueue.ItemHandlerFunc[*pendingRequest](func(d reqqueue.Delivery[*pendingRequest]) {
		d.Data.admitted <- d.Done
	})
	queue, err := reqqueue.NewWithOpts[*pendingRequest](handler, queueOpts, reqqueue.QueueOpts{
		OnDrain:          opts.OnDrain,
		HostRules:        opts.HostRules,
		Classifier:       opts.Classifier,
		Logger:           opts.QueueLogger,
		MetricsCollector: opts.MetricsCollector,
	})
	if err != nil {
		return nil, fmt.Errorf("create request queue: %w", err)
	}

	return &HostLimitingRoundTripper{
		Delegate:       delegate,
		WaitTimeout:    opts.WaitTimeout,
		queue:          queue,
		loggerProvider: opts.LoggerProvider,
		waiting:        atomic.NewInt32(0),
	}, nil
}

// RoundTrip executes a single HTTP transaction, returning a Response for the provided Request.
// The transaction starts only after the request is admitted by the queue.
func (rt *HostLimitingRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	target, err := hostkey.FromURL(r.URL)
	if err != nil {
		closeRequestBody(r)
		return nil, err
	}

	ctx := r.Context()
	pr := &pendingRequest{admitted: make(chan func(), 1)}
	enqueueOpts := reqqueue.EnqueueOpts{
		ID:        reqqueue.ID(r.Header.Get(RequestIDHeader)),
		Overrides: GetQueueOverridesFromContext(ctx),
	}
	id, err := rt.queue.EnqueueWithOpts(target, pr, enqueueOpts)
	if errors.Is(err, reqqueue.ErrDuplicateID) {
		// Several requests may share the same X-Request-ID.
		enqueueOpts.ID = ""
		id, err = rt.queue.EnqueueWithOpts(target, pr, enqueueOpts)
	}
	if err != nil {
		closeRequestBody(r)
		return nil, err
	}

	logger := rt.logger(ctx)
	startedAt := time.Now()
	done, err := rt.waitAdmission(ctx, id, pr)
	if err != nil {
		closeRequestBody(r)
		logger.Warn("request was not admitted by host limiter",
			log.String("host", target.Hostname), log.DurationIn(time.Since(startedAt), time.Millisecond), log.Error(err))
		return nil, &HostLimitingWaitError{Inner: err}
	}
	logger.Debug("request admitted by host limiter",
		log.String("host", target.Hostname), log.DurationIn(time.Since(startedAt), time.Millisecond))

	resp, err := rt.Delegate.RoundTrip(r)
	if err != nil {
		done()
		return resp, err
	}
	resp.Body = &releasingBody{ReadCloser: resp.Body, release: done}
	return resp, nil
}

func (rt *HostLimitingRoundTripper) waitAdmission(ctx context.Context, id reqqueue.ID, pr *pendingRequest) (func(), error) {
	if rt.WaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.WaitTimeout)
		defer cancel()
	}

	rt.waiting.Inc()
	defer rt.waiting.Dec()

	select {
	case done := <-pr.admitted:
		return done, nil
	case <-ctx.Done():
	}

	if err := rt.queue.Dequeue(id); err != nil {
		// The request has been admitted concurrently, release its slot as soon as it's delivered.
		go func() {
			done := <-pr.admitted
			done()
		}()
	}
	return nil, ctx.Err()
}

func (rt *HostLimitingRoundTripper) logger(ctx context.Context) log.FieldLogger {
	if rt.loggerProvider != nil {
		if logger := rt.loggerProvider(ctx); logger != nil {
			return logger
		}
	}
	return GetLoggerFromContext(ctx)
}

// Pause stops admission of new requests. In-flight requests are not affected.
func (rt *HostLimitingRoundTripper) Pause() {
	rt.queue.Pause()
}

// Resume restarts admission of waiting requests.
func (rt *HostLimitingRoundTripper) Resume() {
	rt.queue.Resume()
}

// IsPaused reports whether admission is paused.
func (rt *HostLimitingRoundTripper) IsPaused() bool {
	return rt.queue.IsPaused()
}

// NumPending returns the number of requests waiting for admission.
func (rt *HostLimitingRoundTripper) NumPending() int {
	return rt.queue.NumPending()
}

// NumActive returns the number of in-flight requests.
func (rt *HostLimitingRoundTripper) NumActive() int {
	return rt.queue.NumActive()
}

// NumWaiting returns the number of RoundTrip calls blocked on admission.
func (rt *HostLimitingRoundTripper) NumWaiting() int {
	return int(rt.waiting.Load())
}

// ActiveForHost returns the number of in-flight requests for the host of the given URL.
func (rt *HostLimitingRoundTripper) ActiveForHost(rawURL string) (int, error) {
	target, err := hostkey.Parse(rawURL)
	if err != nil {
		return 0, err
	}
	key, err := rt.queue.HostKey(target)
	if err != nil {
		return 0, err
	}
	return rt.queue.ActiveForHost(key), nil
}

// HostLimitingWaitError is returned in RoundTrip method of HostLimitingRoundTripper
// when the request is not admitted before its context is done or the wait timeout expires.
type HostLimitingWaitError struct {
	Inner error
}

func (e *HostLimitingWaitError) Error() string {
	return fmt.Sprintf("wait for admission due to client side host limiting: %s", e.Inner.Error())
}

// Unwrap returns the next error in the error chain.
func (e *HostLimitingWaitError) Unwrap() error {
	return e.Inner
}

// releasingBody releases the request slot when the response body is closed.
type releasingBody struct {
	io.ReadCloser
	release func()
	once    sync.Once
}

func (b *releasingBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)
	return err
}

func closeRequestBody(r *http.Request) {
	if r.Body != nil {
		_ = r.Body.Close() // Per RoundTripper contract.
	}
}
