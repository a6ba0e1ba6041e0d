/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package hostkey

import "strings"

// Options determines which parts of a target are ignored when building its key.
type Options struct {
	IgnorePorts      bool
	IgnoreProtocols  bool
	IgnoreSubdomains bool
}

// Normalize returns the grouping key for the target.
// The classifier is consulted only when subdomains are ignored; nil classifier or an unknown result
// leaves the hostname as is.
func Normalize(target Target, opts Options, classifier Classifier) (string, error) {
	if err := target.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	if !opts.IgnoreProtocols {
		sb.WriteString(target.Scheme())
		sb.WriteString("://")
	}

	hostname := target.Hostname
	if opts.IgnoreSubdomains && classifier != nil {
		if domain, ok := classifier.RegistrableDomain(hostname); ok {
			hostname = domain
		}
	}
	sb.WriteString(hostLiteral(hostname))

	if !opts.IgnorePorts && target.Port != "" {
		sb.WriteByte(':')
		sb.WriteString(target.Port)
	}

	return sb.String(), nil
}
