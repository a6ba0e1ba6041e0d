/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package reqqueue

import (
	"math"
	"time"

	"github.com/acronis/go-hostlimit/log"
)

// scheduleLocked admits pending items while global and per-host capacity allows.
// The scan doesn't stop at an item whose host is saturated, so later items of other hosts may still be admitted.
func (q *Queue[D]) scheduleLocked() {
	defer q.reportLocked()

	if q.paused {
		return
	}
	available := math.MaxInt
	if q.opts.MaxSockets >= 0 {
		available = q.opts.MaxSockets - q.active
	}
	if available <= 0 {
		return
	}

	for i := 0; i < len(q.pending); {
		it := q.pending[i]
		hostLimit := it.opts.MaxSocketsPerHost
		if hostLimit == 0 || (hostLimit > 0 && q.activeHosts[it.hostKey] >= hostLimit) {
			i++
			continue
		}
		// The next pending item shifts into position i.
		q.admitLocked(i)
		available--
		if available <= 0 {
			return
		}
	}
}

func (q *Queue[D]) admitLocked(pendingIdx int) {
	it := q.pending[pendingIdx]
	q.removePendingAtLocked(pendingIdx)
	it.state = itemStateActive
	q.active++
	q.activeHosts[it.hostKey]++

	q.metrics.IncAdmitted()
	q.metrics.ObserveAdmissionWait(time.Since(it.enqueuedAt))
	q.logger.Debug("request queue item admitted",
		log.String("item_id", string(it.id)), log.String("host_key", it.hostKey),
		log.Int("active", q.active), log.Int("host_active", q.activeHosts[it.hostKey]))

	d := Delivery[D]{
		ID:      it.id,
		HostKey: it.hostKey,
		Target:  it.target,
		Data:    it.data,
		Done:    func() { q.complete(it) },
	}
	deliver := queuedCall[D]{it: it, call: func() { q.handler.HandleItem(d) }}

	if it.opts.RateLimit > 0 {
		time.AfterFunc(it.opts.RateLimit, func() {
			q.mu.Lock()
			q.outbox = append(q.outbox, deliver)
			q.unlockAndDispatch()
		})
		return
	}
	q.outbox = append(q.outbox, deliver)
}

// complete releases slots of the active item. Calls for an already completed item are ignored.
func (q *Queue[D]) complete(it *item[D]) {
	q.mu.Lock()

	if q.items[it.id] != it || it.state != itemStateActive {
		q.mu.Unlock()
		return
	}
	q.active--
	if n := q.activeHosts[it.hostKey] - 1; n > 0 {
		q.activeHosts[it.hostKey] = n
	} else {
		delete(q.activeHosts, it.hostKey)
	}
	delete(q.items, it.id)
	q.logger.Debug("request queue item done", log.String("item_id", string(it.id)), log.String("host_key", it.hostKey))

	q.scheduleLocked()
	q.checkDrainedLocked()

	if f := it.frame; f != nil {
		// Done is called before the item's handler returned,
		// the goroutine running the handler makes the resulting calls after it returns.
		f.calls = append(f.calls, q.outbox...)
		q.outbox = nil
		q.mu.Unlock()
		return
	}
	q.unlockAndDispatch()
}

// queuedCall is a handler call that must be made outside the lock.
// Drain notifications have no item.
type queuedCall[D any] struct {
	it   *item[D]
	call func()
}

// dispatchFrame holds the calls produced by a single operation and by Done callbacks
// invoked synchronously from handlers that the frame runs.
type dispatchFrame[D any] struct {
	calls []queuedCall[D]
}

// unlockAndDispatch releases the lock and makes the handler calls produced by the current operation
// on the calling goroutine. Goroutines dispatch independently, so a blocked handler
// delays only the calls of its own operation.
// Done called from inside a handler extends the running frame instead of dispatching recursively,
// so synchronous completion of many items doesn't grow the stack.
func (q *Queue[D]) unlockAndDispatch() {
	if len(q.outbox) == 0 {
		q.mu.Unlock()
		return
	}
	f := &dispatchFrame[D]{calls: q.outbox}
	q.outbox = nil
	q.mu.Unlock()
	q.runFrame(f)
}

func (q *Queue[D]) runFrame(f *dispatchFrame[D]) {
	for {
		q.mu.Lock()
		if len(f.calls) == 0 {
			q.mu.Unlock()
			return
		}
		c := f.calls[0]
		f.calls[0] = queuedCall[D]{}
		f.calls = f.calls[1:]
		if c.it != nil {
			c.it.frame = f
		}
		q.mu.Unlock()

		c.call()

		if c.it != nil {
			q.mu.Lock()
			c.it.frame = nil
			q.mu.Unlock()
		}
	}
}

func (q *Queue[D]) reportLocked() {
	q.metrics.SetPending(len(q.pending))
	q.metrics.SetActive(q.active)
}
