/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package reqqueue

import (
	"errors"

	"github.com/acronis/go-hostlimit/hostkey"
)

// ErrInvalidTarget is returned by Enqueue when the target has no protocol or hostname.
var ErrInvalidTarget = hostkey.ErrInvalidTarget

// ErrDuplicateID is returned by Enqueue when the caller-supplied ID belongs to an item that is still in the queue.
var ErrDuplicateID = errors.New("item with the same id is already in the queue")

// ErrUnknownID is returned by Dequeue when there is no item with the given ID.
var ErrUnknownID = errors.New("unknown item id")

// ErrItemActive is returned by Dequeue when the item has already been admitted.
var ErrItemActive = errors.New("item is already active")
