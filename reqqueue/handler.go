/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package reqqueue

import "github.com/acronis/go-hostlimit/hostkey"

// ID identifies an item in the queue.
type ID string

// Delivery is an admitted item passed to the ItemHandler.
type Delivery[D any] struct {
	ID      ID
	HostKey string
	Target  hostkey.Target
	Data    D

	// Done must be called when the work for the item is finished.
	// It releases the item's slots and may lead to admission of other items. Repeated calls are no-ops.
	Done func()
}

// ItemHandler handles admitted items.
// HandleItem is called on the goroutine whose operation admitted the item (Enqueue, Dequeue, Resume, Done)
// or on a timer goroutine when delivery is rate limited. It may block: other goroutines keep delivering their items.
// Items admitted by a Done call made before the handler returns are delivered after it returns.
type ItemHandler[D any] interface {
	HandleItem(d Delivery[D])
}

// ItemHandlerFunc is an adapter to allow the use of ordinary functions as ItemHandler.
type ItemHandlerFunc[D any] func(d Delivery[D])

// HandleItem calls f(d).
func (f ItemHandlerFunc[D]) HandleItem(d Delivery[D]) {
	f(d)
}
