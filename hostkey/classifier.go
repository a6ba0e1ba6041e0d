/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package hostkey

import (
	"fmt"
	"net"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/net/publicsuffix"
)

// Classifier reduces a hostname to its registrable domain.
type Classifier interface {
	// RegistrableDomain returns the registrable domain of the hostname ("www.example.co.uk" -> "example.co.uk").
	// ok is false when the domain cannot be determined (IP literal, unlisted TLD, etc.).
	RegistrableDomain(hostname string) (domain string, ok bool)
}

// ClassifierFunc is an adapter to allow the use of ordinary functions as Classifier.
type ClassifierFunc func(hostname string) (string, bool)

// RegistrableDomain calls f(hostname).
func (f ClassifierFunc) RegistrableDomain(hostname string) (string, bool) {
	return f(hostname)
}

// PublicSuffixClassifier is a Classifier backed by the Public Suffix List.
type PublicSuffixClassifier struct{}

// RegistrableDomain implements Classifier.
func (PublicSuffixClassifier) RegistrableDomain(hostname string) (string, bool) {
	hostname = strings.TrimSuffix(strings.ToLower(hostname), ".")
	if hostname == "" || net.ParseIP(hostname) != nil {
		return "", false
	}
	suffix, icann := publicsuffix.PublicSuffix(hostname)
	if !icann && strings.IndexByte(suffix, '.') < 0 {
		// Only the default "*" rule matched, the TLD is not on the list.
		return "", false
	}
	if suffix == hostname {
		return hostname, true
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(hostname)
	if err != nil {
		return "", false
	}
	return domain, true
}

type classification struct {
	domain string
	ok     bool
}

// CachingClassifier memoizes results of the delegate Classifier in an LRU cache.
type CachingClassifier struct {
	delegate Classifier
	cache    *lru.Cache
}

// NewCachingClassifier creates a new CachingClassifier that keeps up to size results.
func NewCachingClassifier(delegate Classifier, size int) (*CachingClassifier, error) {
	if delegate == nil {
		return nil, fmt.Errorf("delegate classifier is required")
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("new LRU cache for classified hostnames: %w", err)
	}
	return &CachingClassifier{delegate: delegate, cache: cache}, nil
}

// RegistrableDomain implements Classifier.
func (c *CachingClassifier) RegistrableDomain(hostname string) (string, bool) {
	if v, found := c.cache.Get(hostname); found {
		res := v.(classification)
		return res.domain, res.ok
	}
	domain, ok := c.delegate.RegistrableDomain(hostname)
	c.cache.Add(hostname, classification{domain, ok})
	return domain, ok
}

// Len returns the number of cached results.
func (c *CachingClassifier) Len() int {
	return c.cache.Len()
}
