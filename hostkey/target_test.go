/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package hostkey

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		RawURL     string
		WantTarget Target
		WantErr    bool
	}{
		{RawURL: "https://www.google.com/", WantTarget: Target{Protocol: "https", Hostname: "www.google.com"}},
		{RawURL: "https://google.com:443/", WantTarget: Target{Protocol: "https", Hostname: "google.com"}},
		{RawURL: "http://google.com:8080/x.html", WantTarget: Target{Protocol: "http", Hostname: "google.com", Port: "8080"}},
		{RawURL: "HTTP://Google.COM:80", WantTarget: Target{Protocol: "http", Hostname: "google.com"}},
		{RawURL: "ftp://files.example.com:21/a", WantTarget: Target{Protocol: "ftp", Hostname: "files.example.com"}},
		{RawURL: "http://[::1]:9000/", WantTarget: Target{Protocol: "http", Hostname: "::1", Port: "9000"}},
		{RawURL: "/relative/path", WantErr: true},
		{RawURL: "url", WantErr: true},
		{RawURL: "http://%zz", WantErr: true},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.RawURL, func(t *testing.T) {
			target, err := Parse(tt.RawURL)
			if tt.WantErr {
				require.ErrorIs(t, err, ErrInvalidTarget)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.WantTarget, target)
		})
	}
}

func TestFromURL_Nil(t *testing.T) {
	_, err := FromURL((*url.URL)(nil))
	require.ErrorIs(t, err, ErrInvalidTarget)
}

func TestTarget_String(t *testing.T) {
	require.Equal(t, "https://example.com", Target{Protocol: "https:", Hostname: "example.com"}.String())
	require.Equal(t, "http://[::1]:8080", Target{Protocol: "http", Hostname: "::1", Port: "8080"}.String())
}
