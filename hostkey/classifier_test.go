/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package hostkey

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublicSuffixClassifier(t *testing.T) {
	tests := []struct {
		Hostname   string
		WantDomain string
		WantOK     bool
	}{
		{Hostname: "www.google.com", WantDomain: "google.com", WantOK: true},
		{Hostname: "google.com", WantDomain: "google.com", WantOK: true},
		{Hostname: "WWW.Google.Com.", WantDomain: "google.com", WantOK: true},
		{Hostname: "a.b.example.co.uk", WantDomain: "example.co.uk", WantOK: true},
		{Hostname: "co.uk", WantDomain: "co.uk", WantOK: true},
		{Hostname: "localhost", WantOK: false},
		{Hostname: "domain1", WantOK: false},
		{Hostname: "www.example.notatld", WantOK: false},
		{Hostname: "127.0.0.1", WantOK: false},
		{Hostname: "::1", WantOK: false},
		{Hostname: "", WantOK: false},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.Hostname, func(t *testing.T) {
			domain, ok := PublicSuffixClassifier{}.RegistrableDomain(tt.Hostname)
			require.Equal(t, tt.WantOK, ok)
			require.Equal(t, tt.WantDomain, domain)
		})
	}
}

func TestCachingClassifier(t *testing.T) {
	calls := 0
	delegate := ClassifierFunc(func(hostname string) (string, bool) {
		calls++
		return PublicSuffixClassifier{}.RegistrableDomain(hostname)
	})

	classifier, err := NewCachingClassifier(delegate, 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		domain, ok := classifier.RegistrableDomain("www.example.com")
		require.True(t, ok)
		require.Equal(t, "example.com", domain)
	}
	require.Equal(t, 1, calls)

	_, ok := classifier.RegistrableDomain("127.0.0.1")
	require.False(t, ok)
	_, ok = classifier.RegistrableDomain("127.0.0.1")
	require.False(t, ok)
	require.Equal(t, 2, calls)

	// The oldest entry is evicted.
	_, _ = classifier.RegistrableDomain("api.example.org")
	require.Equal(t, 2, classifier.Len())
	_, _ = classifier.RegistrableDomain("www.example.com")
	require.Equal(t, 4, calls)
}

func TestNewCachingClassifier_Errors(t *testing.T) {
	_, err := NewCachingClassifier(nil, 10)
	require.EqualError(t, err, "delegate classifier is required")

	_, err = NewCachingClassifier(PublicSuffixClassifier{}, 0)
	require.Error(t, err)
}
