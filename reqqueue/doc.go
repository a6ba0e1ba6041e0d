/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package reqqueue provides an admission queue that bounds how many outbound requests are in flight
// at once, both globally and per destination host.
//
// Items are enqueued with a target (protocol, hostname, port) and an arbitrary payload.
// The target is reduced to a host key (see package hostkey), and items sharing a host key share
// the per-host budget (Options.MaxSocketsPerHost). The global budget is Options.MaxSockets.
// Admitted items are delivered to the ItemHandler together with a Done callback which must be called
// when the work for the item is finished, releasing its slots.
//
// Key properties:
//   - items of the same host are admitted in the enqueue order;
//   - an item blocked by its saturated host doesn't block items of other hosts;
//   - Options.RateLimit delays the delivery of an admitted item, but the slots are taken at admission;
//   - Pause stops admission, already admitted items are not affected;
//   - OnDrain is called once every time the queue becomes empty (no pending and no active items).
//
// Dequeue cancels pending items only. For an active item it's a no-op returning ErrItemActive,
// the slot is released only by the item's Done callback.
//
// Handlers are never called while the queue's internal lock is held, so they may call any queue method,
// including Done and Enqueue, synchronously.
package reqqueue
