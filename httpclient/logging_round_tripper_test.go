/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-hostlimit/log"
	"github.com/acronis/go-hostlimit/log/logtest"
)

func TestLoggingRoundTripper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/teapot" {
			rw.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = rw.Write([]byte("ok"))
	}))
	defer server.Close()

	tests := []struct {
		Name      string
		Mode      LoggingMode
		Path      string
		WantEntry bool
	}{
		{Name: "all mode, successful request", Mode: LoggingModeAll, Path: "/", WantEntry: true},
		{Name: "failed mode, successful request", Mode: LoggingModeFailed, Path: "/", WantEntry: false},
		{Name: "failed mode, failed request", Mode: LoggingModeFailed, Path: "/teapot", WantEntry: true},
		{Name: "none mode", Mode: LoggingModeNone, Path: "/teapot", WantEntry: false},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.Name, func(t *testing.T) {
			logRecorder := logtest.NewRecorder()
			client := &http.Client{Transport: NewLoggingRoundTripperWithOpts(http.DefaultTransport, LoggingRoundTripperOpts{Mode: tt.Mode})}
			ctx := NewContextWithLogger(context.Background(), logRecorder)

			resp, err := client.Do(newGetRequest(t, ctx, server.URL+tt.Path))
			require.NoError(t, err)
			require.NoError(t, resp.Body.Close())

			entry, found := logRecorder.FindEntry("client http request done")
			require.Equal(t, tt.WantEntry, found)
			if !tt.WantEntry {
				return
			}
			require.Equal(t, log.LevelInfo, entry.Level)
			statusField, found := entry.FindField("status")
			require.True(t, found)
			require.Equal(t, int64(resp.StatusCode), statusField.Int)
			urlField, found := entry.FindField("url")
			require.True(t, found)
			require.Equal(t, server.URL+tt.Path, string(urlField.Bytes))
		})
	}
}

func TestLoggingRoundTripper_Error(t *testing.T) {
	delegateErr := errors.New("connection refused")
	delegate := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return nil, delegateErr
	})
	logRecorder := logtest.NewRecorder()
	rt := NewLoggingRoundTripperWithOpts(delegate, LoggingRoundTripperOpts{
		Mode:           LoggingModeFailed,
		LoggerProvider: func(ctx context.Context) log.FieldLogger { return logRecorder },
	})

	_, err := rt.RoundTrip(newGetRequest(t, context.Background(), "http://example.com/"))
	require.ErrorIs(t, err, delegateErr)

	entry, found := logRecorder.FindEntry("client http request failed")
	require.True(t, found)
	require.Equal(t, log.LevelError, entry.Level)
	_, found = entry.FindField("status")
	require.False(t, found)
}
