/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package reqqueue

import (
	"time"

	"github.com/acronis/go-hostlimit/hostkey"
)

// Unlimited may be used as MaxSockets or MaxSocketsPerHost value to disable the limit.
// Any negative value has the same meaning.
const Unlimited = -1

// DefaultMaxSocketsPerHost is the per-host limit used by DefaultOptions.
const DefaultMaxSocketsPerHost = 2

// Options represents the queue settings.
// Zero limits are valid and mean that nothing is ever admitted.
type Options struct {
	// IgnorePorts excludes the port from the host key.
	IgnorePorts bool

	// IgnoreProtocols excludes the protocol from the host key.
	IgnoreProtocols bool

	// IgnoreSubdomains reduces the hostname to its registrable domain in the host key.
	IgnoreSubdomains bool

	// MaxSockets is the maximum number of active items.
	MaxSockets int

	// MaxSocketsPerHost is the maximum number of active items with the same host key.
	MaxSocketsPerHost int

	// RateLimit is a delay between admission of an item and its delivery to the handler.
	RateLimit time.Duration
}

// DefaultOptions returns options with all host key parts ignored except the registrable domain,
// unlimited global concurrency and DefaultMaxSocketsPerHost per host.
func DefaultOptions() Options {
	return Options{
		IgnorePorts:       true,
		IgnoreProtocols:   true,
		IgnoreSubdomains:  true,
		MaxSockets:        Unlimited,
		MaxSocketsPerHost: DefaultMaxSocketsPerHost,
	}
}

// Overrides changes Options for a single item. Nil fields are inherited.
// The global MaxSockets limit cannot be overridden.
type Overrides struct {
	IgnorePorts       *bool
	IgnoreProtocols   *bool
	IgnoreSubdomains  *bool
	MaxSocketsPerHost *int
	RateLimit         *time.Duration
}

// Resolve applies the overrides layers on top of the options and returns the effective options.
// Layers are applied in order, so the last non-nil value of a field wins.
func (o Options) Resolve(layers ...*Overrides) Options {
	res := o
	for _, ov := range layers {
		if ov == nil {
			continue
		}
		if ov.IgnorePorts != nil {
			res.IgnorePorts = *ov.IgnorePorts
		}
		if ov.IgnoreProtocols != nil {
			res.IgnoreProtocols = *ov.IgnoreProtocols
		}
		if ov.IgnoreSubdomains != nil {
			res.IgnoreSubdomains = *ov.IgnoreSubdomains
		}
		if ov.MaxSocketsPerHost != nil {
			res.MaxSocketsPerHost = *ov.MaxSocketsPerHost
		}
		if ov.RateLimit != nil {
			res.RateLimit = *ov.RateLimit
		}
	}
	return res
}

func (o Options) hostKeyOptions() hostkey.Options {
	return hostkey.Options{
		IgnorePorts:      o.IgnorePorts,
		IgnoreProtocols:  o.IgnoreProtocols,
		IgnoreSubdomains: o.IgnoreSubdomains,
	}
}
