/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/require"
)

func TestRequestIDRoundTripper(t *testing.T) {
	tests := []struct {
		Name     string
		Ctx      context.Context
		Header   string
		Provider func(ctx context.Context) string
		Want     string
	}{
		{
			Name:   "header is kept",
			Ctx:    NewContextWithRequestID(context.Background(), "from-ctx"),
			Header: "from-header",
			Want:   "from-header",
		},
		{
			Name: "request id from context",
			Ctx:  NewContextWithRequestID(context.Background(), "from-ctx"),
			Want: "from-ctx",
		},
		{
			Name:     "request id from provider",
			Ctx:      NewContextWithRequestID(context.Background(), "from-ctx"),
			Provider: func(ctx context.Context) string { return "from-provider" },
			Want:     "from-provider",
		},
		{
			Name: "generated request id",
			Ctx:  context.Background(),
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.Name, func(t *testing.T) {
			var gotID string
			delegate := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
				gotID = r.Header.Get(RequestIDHeader)
				return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
			})
			rt := NewRequestIDRoundTripperWithOpts(delegate, RequestIDRoundTripperOpts{RequestIDProvider: tt.Provider})

			req := newGetRequest(t, tt.Ctx, "http://example.com/")
			if tt.Header != "" {
				req.Header.Set(RequestIDHeader, tt.Header)
			}
			_, err := rt.RoundTrip(req)
			require.NoError(t, err)

			if tt.Want == "" {
				_, parseErr := xid.FromString(gotID)
				require.NoError(t, parseErr)
				require.Empty(t, req.Header.Get(RequestIDHeader), "original request must not be modified")
				return
			}
			require.Equal(t, tt.Want, gotID)
		})
	}
}
