/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-hostlimit/config"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfgData     string
		expectedCfg func() *Config
	}{
		{
			name:        "defaults",
			cfgData:     `{}`,
			expectedCfg: NewDefaultConfig,
		},
		{
			name: "file output",
			cfgData: `
log:
  level: WARN
  format: text
  output: file
  nocolor: true
  addCaller: true
  file:
    path: hostlimit-{{pid}}.log
    rotation:
      compress: true
      maxSize: 100M
      maxBackups: 42
      maxAgeDays: 7
`,
			expectedCfg: func() *Config {
				cfg := NewDefaultConfig()
				cfg.Level = LevelWarn
				cfg.Format = FormatText
				cfg.Output = OutputFile
				cfg.NoColor = true
				cfg.AddCaller = true
				cfg.File.Path = "hostlimit-{{pid}}.log"
				cfg.File.Rotation.Compress = true
				cfg.File.Rotation.MaxSize = 100 * 1024 * 1024
				cfg.File.Rotation.MaxBackups = 42
				cfg.File.Rotation.MaxAgeDays = 7
				return cfg
			},
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(
				bytes.NewBufferString(tt.cfgData), config.DataTypeYAML, cfg)
			require.NoError(t, err)
			require.Equal(t, tt.expectedCfg(), cfg)
		})
	}
}

func TestConfigWithInvalidValues(t *testing.T) {
	tests := []struct {
		name           string
		cfgData        string
		expectedErrMsg string
	}{
		{
			name:           "unknown level",
			cfgData:        `{"log":{"level":"trace"}}`,
			expectedErrMsg: `log.level: unknown value "trace", should be one of [error warn info debug]`,
		},
		{
			name:           "unknown format",
			cfgData:        `{"log":{"format":"xml"}}`,
			expectedErrMsg: `log.format: unknown value "xml", should be one of [json text]`,
		},
		{
			name:           "file output without path",
			cfgData:        `{"log":{"output":"file"}}`,
			expectedErrMsg: `log.file.path: cannot be empty when "file" output is used`,
		},
		{
			name:           "too small rotation size",
			cfgData:        `{"log":{"file":{"rotation":{"maxSize":"1K"}}}}`,
			expectedErrMsg: `log.file.rotation.maxSize: should be >= 1M`,
		},
		{
			name:           "no backups",
			cfgData:        `{"log":{"file":{"rotation":{"maxBackups":0}}}}`,
			expectedErrMsg: `log.file.rotation.maxBackups: should be >= 1`,
		},
		{
			name:           "negative max age",
			cfgData:        `{"log":{"file":{"rotation":{"maxAgeDays":-1}}}}`,
			expectedErrMsg: `log.file.rotation.maxAgeDays: should be >= 0`,
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(
				bytes.NewBufferString(tt.cfgData), config.DataTypeJSON, NewConfig())
			require.EqualError(t, err, tt.expectedErrMsg)
		})
	}
}
