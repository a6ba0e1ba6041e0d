/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package reqqueue

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/acronis/go-hostlimit/hostkey"
	"github.com/acronis/go-hostlimit/log"
)

// QueueOpts represents additional options for the Queue.
type QueueOpts struct {
	// OnDrain is called every time the queue becomes empty (no pending and no active items).
	OnDrain func()

	// HostRules override options for matching hosts.
	HostRules []HostRule

	// Classifier is used for reducing hostnames to registrable domains when subdomains are ignored.
	// hostkey.PublicSuffixClassifier is used by default.
	Classifier hostkey.Classifier

	// Logger is used for debug logging of the queue state changes. Logging is disabled by default.
	Logger log.FieldLogger

	// MetricsCollector collects queue metrics. Metrics are disabled by default.
	MetricsCollector MetricsCollector
}

// EnqueueOpts represents options for a single item.
type EnqueueOpts struct {
	// ID is a caller-supplied item ID. If empty, the next counter value is used.
	ID ID

	// Overrides change the queue options for this item only.
	Overrides *Overrides
}

type itemState int

const (
	itemStatePending itemState = iota
	itemStateActive
)

type item[D any] struct {
	id         ID
	hostKey    string
	target     hostkey.Target
	data       D
	opts       Options
	state      itemState
	enqueuedAt time.Time

	// frame is set while the item's handler runs.
	frame *dispatchFrame[D]
}

// Queue is an admission queue bounding the number of active items globally and per host.
// It's safe for concurrent use.
type Queue[D any] struct {
	handler    ItemHandler[D]
	opts       Options
	rules      []compiledHostRule
	classifier hostkey.Classifier
	onDrain    func()
	logger     log.FieldLogger
	metrics    MetricsCollector

	mu          sync.Mutex
	items       map[ID]*item[D]
	pending     []*item[D]
	activeHosts map[string]int
	active      int
	paused      bool
	counter     uint64

	// outbox collects handler calls produced by the operation holding the lock. See unlockAndDispatch.
	outbox []queuedCall[D]
}

// New creates a new Queue which delivers admitted items to the handler.
func New[D any](handler ItemHandler[D], opts Options) (*Queue[D], error) {
	return NewWithOpts(handler, opts, QueueOpts{})
}

// NewWithOpts creates a new Queue with additional options.
func NewWithOpts[D any](handler ItemHandler[D], opts Options, queueOpts QueueOpts) (*Queue[D], error) {
	if handler == nil {
		return nil, fmt.Errorf("item handler is required")
	}
	if opts.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit should not be negative, got %s", opts.RateLimit)
	}
	rules, err := compileHostRules(queueOpts.HostRules)
	if err != nil {
		return nil, fmt.Errorf("compile host rules: %w", err)
	}

	q := &Queue[D]{
		handler:     handler,
		opts:        opts,
		rules:       rules,
		classifier:  queueOpts.Classifier,
		onDrain:     queueOpts.OnDrain,
		logger:      queueOpts.Logger,
		metrics:     queueOpts.MetricsCollector,
		items:       make(map[ID]*item[D]),
		activeHosts: make(map[string]int),
	}
	if q.classifier == nil {
		q.classifier = hostkey.PublicSuffixClassifier{}
	}
	if q.logger == nil {
		q.logger = log.NewDisabledLogger()
	}
	if q.metrics == nil {
		q.metrics = disabledMetrics{}
	}
	return q, nil
}

// Enqueue adds an item to the tail of the queue and admits as many pending items as the limits allow.
// ErrInvalidTarget is returned if the target has no protocol or hostname.
func (q *Queue[D]) Enqueue(target hostkey.Target, data D) (ID, error) {
	return q.EnqueueWithOpts(target, data, EnqueueOpts{})
}

// EnqueueWithOpts works like Enqueue but allows specifying the item ID and per-item overrides.
// ErrDuplicateID is returned if an item with the same ID is still in the queue.
func (q *Queue[D]) EnqueueWithOpts(target hostkey.Target, data D, opts EnqueueOpts) (ID, error) {
	itemOpts := q.opts.Resolve(matchHostRule(q.rules, target.Hostname), opts.Overrides)
	hostKey, err := hostkey.Normalize(target, itemOpts.hostKeyOptions(), q.classifier)
	if err != nil {
		return "", err
	}

	q.mu.Lock()

	id := opts.ID
	if id == "" {
		id = q.nextIDLocked()
	} else if _, exists := q.items[id]; exists {
		q.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	it := &item[D]{
		id:         id,
		hostKey:    hostKey,
		target:     target,
		data:       data,
		opts:       itemOpts,
		state:      itemStatePending,
		enqueuedAt: time.Now(),
	}
	q.items[id] = it
	q.pending = append(q.pending, it)
	q.logger.Debug("request queue item enqueued",
		log.String("item_id", string(id)), log.String("host_key", hostKey), log.Int("pending", len(q.pending)))

	q.scheduleLocked()
	q.unlockAndDispatch()
	return id, nil
}

// Dequeue removes a pending item from the queue.
// ErrUnknownID is returned if there is no such item, and ErrItemActive if the item is already admitted.
// Active items are not affected, their slots are released by the Done callback only.
func (q *Queue[D]) Dequeue(id ID) error {
	q.mu.Lock()

	it, ok := q.items[id]
	if !ok {
		q.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	if it.state == itemStateActive {
		q.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrItemActive, id)
	}

	q.removePendingLocked(it)
	delete(q.items, id)
	q.metrics.IncDequeued()
	q.logger.Debug("request queue item dequeued", log.String("item_id", string(id)), log.String("host_key", it.hostKey))

	q.scheduleLocked()
	q.checkDrainedLocked()
	q.unlockAndDispatch()
	return nil
}

// Pause stops admission of pending items. Active items are not affected.
func (q *Queue[D]) Pause() {
	q.mu.Lock()
	q.paused = true
	q.mu.Unlock()
}

// Resume restarts admission and immediately admits as many pending items as the limits allow.
func (q *Queue[D]) Resume() {
	q.mu.Lock()
	q.paused = false
	q.scheduleLocked()
	q.unlockAndDispatch()
}

// IsPaused reports whether the queue is paused.
func (q *Queue[D]) IsPaused() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.paused
}

// NumPending returns the number of items waiting for admission.
func (q *Queue[D]) NumPending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// NumActive returns the number of admitted items whose Done callback has not been called yet.
func (q *Queue[D]) NumActive() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// Len returns the total number of pending and active items.
func (q *Queue[D]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) + q.active
}

// Has reports whether the item with the given ID is in the queue (pending or active).
func (q *Queue[D]) Has(id ID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.items[id]
	return ok
}

// ActiveForHost returns the number of active items with the given host key.
func (q *Queue[D]) ActiveForHost(hostKey string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.activeHosts[hostKey]
}

// HostKey returns the host key the target would get in this queue.
func (q *Queue[D]) HostKey(target hostkey.Target) (string, error) {
	itemOpts := q.opts.Resolve(matchHostRule(q.rules, target.Hostname))
	return hostkey.Normalize(target, itemOpts.hostKeyOptions(), q.classifier)
}

func (q *Queue[D]) nextIDLocked() ID {
	for {
		id := ID(strconv.FormatUint(q.counter, 10))
		q.counter++
		if _, exists := q.items[id]; !exists {
			return id
		}
	}
}

func (q *Queue[D]) removePendingLocked(it *item[D]) {
	for i := range q.pending {
		if q.pending[i] == it {
			q.removePendingAtLocked(i)
			return
		}
	}
}

func (q *Queue[D]) removePendingAtLocked(i int) {
	if i == 0 {
		q.pending[0] = nil
		q.pending = q.pending[1:]
		return
	}
	last := len(q.pending) - 1
	copy(q.pending[i:], q.pending[i+1:])
	q.pending[last] = nil
	q.pending = q.pending[:last]
}

func (q *Queue[D]) checkDrainedLocked() {
	if len(q.pending) != 0 || q.active != 0 {
		return
	}
	q.counter = 0
	q.logger.Debug("request queue drained")
	if q.onDrain != nil {
		q.outbox = append(q.outbox, queuedCall[D]{call: q.onDrain})
	}
}
