/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package hostkey

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidTarget is returned when a target has no protocol or hostname.
var ErrInvalidTarget = errors.New("invalid target")

// defaultPorts are dropped from targets built by FromURL, so an explicit default port
// and an omitted one produce the same key.
var defaultPorts = map[string]string{
	"ftp":   "21",
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

// Target is an already parsed request destination.
type Target struct {
	// Protocol is the URL scheme. A trailing colon ("https:") is accepted.
	Protocol string

	// Hostname is the host without port. IPv6 literals are expected without brackets.
	Hostname string

	// Port is the explicit port or an empty string.
	Port string
}

// Scheme returns the protocol without the trailing colon.
func (t Target) Scheme() string {
	return strings.TrimSuffix(t.Protocol, ":")
}

// String returns a URL-like representation of the target.
func (t Target) String() string {
	host := hostLiteral(t.Hostname)
	if t.Port != "" {
		host += ":" + t.Port
	}
	return t.Scheme() + "://" + host
}

// hostLiteral encloses an IPv6 address in square brackets, so the port can't be confused with its last group.
func hostLiteral(hostname string) string {
	if strings.IndexByte(hostname, ':') >= 0 && !strings.HasPrefix(hostname, "[") {
		return "[" + hostname + "]"
	}
	return hostname
}

// Validate checks that the target carries both protocol and hostname.
func (t Target) Validate() error {
	if t.Scheme() == "" {
		return fmt.Errorf("%w: protocol is missing", ErrInvalidTarget)
	}
	if t.Hostname == "" {
		return fmt.Errorf("%w: hostname is missing", ErrInvalidTarget)
	}
	return nil
}

// FromURL builds a Target from the parsed URL.
// The hostname is lower-cased and the default port of the scheme is omitted.
func FromURL(u *url.URL) (Target, error) {
	if u == nil {
		return Target{}, fmt.Errorf("%w: url is nil", ErrInvalidTarget)
	}
	t := Target{
		Protocol: strings.ToLower(u.Scheme),
		Hostname: strings.ToLower(u.Hostname()),
		Port:     u.Port(),
	}
	if t.Port != "" && defaultPorts[t.Protocol] == t.Port {
		t.Port = ""
	}
	if err := t.Validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}

// Parse parses the raw URL and builds a Target from it.
func Parse(rawURL string) (Target, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %s", ErrInvalidTarget, err.Error())
	}
	return FromURL(u)
}
