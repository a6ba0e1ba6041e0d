/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package hostkey maps request targets to the keys used for grouping them under a common
// per-host concurrency budget.
//
// A key is built from the protocol, the hostname (optionally reduced to its registrable domain)
// and the explicit port. Which parts take part in the key is controlled by Options:
//
//	key, _ := hostkey.Normalize(
//		hostkey.Target{Protocol: "https", Hostname: "www.example.com", Port: "8080"},
//		hostkey.Options{IgnoreSubdomains: true, IgnorePorts: true},
//		hostkey.PublicSuffixClassifier{},
//	)
//	// key == "https://example.com"
package hostkey
