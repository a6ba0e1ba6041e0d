/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestDataProvider(t *testing.T, yamlData string) DataProvider {
	t.Helper()
	va := NewViperAdapter()
	require.NoError(t, va.SetFromReader(bytes.NewBufferString(yamlData), DataTypeYAML))
	return va
}

func TestViperAdapter_Getters(t *testing.T) {
	dp := newTestDataProvider(t, `
flag: true
num: 42
str: hello
level: WARN
hosts: [a.example.com, b.example.com]
timeout: 1m30s
size: 10M
sizeNum: 1024
negativeSize: -1
`)

	flag, err := dp.GetBool("flag")
	require.NoError(t, err)
	require.True(t, flag)

	num, err := dp.GetInt("num")
	require.NoError(t, err)
	require.Equal(t, 42, num)

	str, err := dp.GetString("str")
	require.NoError(t, err)
	require.Equal(t, "hello", str)

	level, err := dp.GetStringFromSet("level", []string{"info", "warn"}, true)
	require.NoError(t, err)
	require.Equal(t, "WARN", level)
	_, err = dp.GetStringFromSet("level", []string{"info", "warn"}, false)
	require.EqualError(t, err, `level: unknown value "WARN", should be one of [info warn]`)

	hosts, err := dp.GetStringSlice("hosts")
	require.NoError(t, err)
	require.Equal(t, []string{"a.example.com", "b.example.com"}, hosts)

	missing, err := dp.GetStringSlice("missing")
	require.NoError(t, err)
	require.Nil(t, missing)

	timeout, err := dp.GetDuration("timeout")
	require.NoError(t, err)
	require.Equal(t, 90*time.Second, timeout)

	size, err := dp.GetBytesCount("size")
	require.NoError(t, err)
	require.Equal(t, BytesCount(10*1024*1024), size)

	sizeNum, err := dp.GetBytesCount("sizeNum")
	require.NoError(t, err)
	require.Equal(t, BytesCount(1024), sizeNum)

	_, err = dp.GetBytesCount("negativeSize")
	require.EqualError(t, err, "negativeSize: negative value is not allowed: -1")

	_, err = dp.GetInt("str")
	require.ErrorContains(t, err, "str: ")
}

func TestKeyPrefixedDataProvider(t *testing.T) {
	dp := NewKeyPrefixedDataProvider(newTestDataProvider(t, `
queue:
  maxSockets: 10
`), "queue")

	require.True(t, dp.IsSet("maxSockets"))
	maxSockets, err := dp.GetInt("maxSockets")
	require.NoError(t, err)
	require.Equal(t, 10, maxSockets)

	dp.SetDefault("rateLimit", "50ms")
	rateLimit, err := dp.GetDuration("rateLimit")
	require.NoError(t, err)
	require.Equal(t, 50*time.Millisecond, rateLimit)

	require.EqualError(t, dp.WrapKeyErr("maxSockets", errTest), "queue.maxSockets: test error")
}

type testRule struct {
	Hosts   []string     `mapstructure:"hosts"`
	Timeout TimeDuration `mapstructure:"timeout"`
}

func TestViperAdapter_UnmarshalKey(t *testing.T) {
	dp := newTestDataProvider(t, `
rules:
  - hosts: ["*.example.com"]
    timeout: 100ms
  - hosts: api.local
    timeout: 2s
`)
	var rules []testRule
	require.NoError(t, dp.UnmarshalKey("rules", &rules, WithTextUnmarshalerHook()))
	require.Equal(t, []testRule{
		{Hosts: []string{"*.example.com"}, Timeout: TimeDuration(100 * time.Millisecond)},
		{Hosts: []string{"api.local"}, Timeout: TimeDuration(2 * time.Second)},
	}, rules)
}
