/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var errTest = errors.New("test error")

func TestBytesCount(t *testing.T) {
	tests := []struct {
		Input   string
		Want    BytesCount
		WantErr bool
	}{
		{Input: "1024", Want: 1024},
		{Input: "1K", Want: 1024},
		{Input: "250M", Want: 250 * 1024 * 1024},
		{Input: "1Gi", Want: 1024 * 1024 * 1024},
		{Input: "lots", WantErr: true},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.Input, func(t *testing.T) {
			var b BytesCount
			err := b.UnmarshalText([]byte(tt.Input))
			if tt.WantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.Want, b)
		})
	}

	var s struct {
		Size BytesCount `yaml:"size"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("size: 2M"), &s))
	require.Equal(t, BytesCount(2*1024*1024), s.Size)
	require.Equal(t, "2M", s.Size.String())
}

func TestTimeDuration(t *testing.T) {
	var s struct {
		Delay TimeDuration `yaml:"delay" json:"delay"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("delay: 50ms"), &s))
	require.Equal(t, TimeDuration(50*time.Millisecond), s.Delay)

	require.NoError(t, json.Unmarshal([]byte(`{"delay":"1m"}`), &s))
	require.Equal(t, TimeDuration(time.Minute), s.Delay)

	require.NoError(t, json.Unmarshal([]byte(`{"delay":1000}`), &s))
	require.Equal(t, TimeDuration(time.Microsecond), s.Delay)

	require.Error(t, json.Unmarshal([]byte(`{"delay":"soon"}`), &s))
	require.Error(t, json.Unmarshal([]byte(`{"delay":-5}`), &s))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{"delay":"1µs"}`, string(data))
}
