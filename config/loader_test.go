/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testServerConfig struct {
	Address string
}

func (c *testServerConfig) SetProviderDefaults(dp DataProvider) {
	dp.SetDefault("server.addr", ":80")
}

func (c *testServerConfig) Set(dp DataProvider) error {
	var err error
	c.Address, err = dp.GetString("server.addr")
	return err
}

type testPrefixedConfig struct {
	Name  string
	Limit int
}

func (c *testPrefixedConfig) KeyPrefix() string {
	return "upstream"
}

func (c *testPrefixedConfig) SetProviderDefaults(dp DataProvider) {
	dp.SetDefault("limit", 2)
}

func (c *testPrefixedConfig) Set(dp DataProvider) error {
	var err error
	if c.Name, err = dp.GetString("name"); err != nil {
		return err
	}
	c.Limit, err = dp.GetInt("limit")
	return err
}

func TestLoader_LoadFromReader(t *testing.T) {
	t.Run("defaults are used", func(t *testing.T) {
		serverCfg := &testServerConfig{}
		prefixedCfg := &testPrefixedConfig{}
		err := NewLoader(NewViperAdapter()).LoadFromReader(bytes.NewBufferString(`{}`), DataTypeJSON, serverCfg, prefixedCfg)
		require.NoError(t, err)
		require.Equal(t, ":80", serverCfg.Address)
		require.Equal(t, 2, prefixedCfg.Limit)
		require.Equal(t, "", prefixedCfg.Name)
	})

	t.Run("values from yaml", func(t *testing.T) {
		serverCfg := &testServerConfig{}
		prefixedCfg := &testPrefixedConfig{}
		cfgData := `
server:
  addr: ":8080"
upstream:
  name: api
  limit: 5
`
		err := NewLoader(NewViperAdapter()).LoadFromReader(bytes.NewBufferString(cfgData), DataTypeYAML, serverCfg, prefixedCfg)
		require.NoError(t, err)
		require.Equal(t, ":8080", serverCfg.Address)
		require.Equal(t, "api", prefixedCfg.Name)
		require.Equal(t, 5, prefixedCfg.Limit)
	})

	t.Run("invalid value", func(t *testing.T) {
		err := NewLoader(NewViperAdapter()).LoadFromReader(
			bytes.NewBufferString(`{"upstream":{"limit":"many"}}`), DataTypeJSON, &testPrefixedConfig{})
		require.ErrorContains(t, err, "upstream.limit")
	})
}

func TestLoader_LoadFromFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"server":{"addr":":777"}}`), 0o600))

	serverCfg := &testServerConfig{}
	require.NoError(t, NewLoader(NewViperAdapter()).LoadFromFile(cfgPath, DataTypeJSON, serverCfg))
	require.Equal(t, ":777", serverCfg.Address)

	err := NewLoader(NewViperAdapter()).LoadFromFile(filepath.Join(t.TempDir(), "missing.json"), DataTypeJSON, serverCfg)
	require.Error(t, err)
}

func TestNewDefaultLoader_EnvVars(t *testing.T) {
	t.Setenv("TESTAPP_UPSTREAM_LIMIT", "11")

	prefixedCfg := &testPrefixedConfig{}
	err := NewDefaultLoader("testapp").LoadFromReader(bytes.NewBufferString(`{"upstream":{"limit":3}}`), DataTypeJSON, prefixedCfg)
	require.NoError(t, err)
	require.Equal(t, 11, prefixedCfg.Limit)
}
