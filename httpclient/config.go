/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/acronis/go-hostlimit/config"
	"github.com/acronis/go-hostlimit/reqqueue"
)

// Default configuration values.
const (
	DefaultClientTimeout = time.Minute
)

const (
	cfgDefaultKeyPrefix = "httpClient"

	cfgKeyTimeout                    = "timeout"
	cfgKeyWaitTimeout                = "waitTimeout"
	cfgKeyLoggerEnabled              = "logger.enabled"
	cfgKeyLoggerMode                 = "logger.mode"
	cfgKeyLoggerSlowRequestThreshold = "logger.slowRequestThreshold"
	cfgKeyRequestQueue               = "requestQueue"
)

var availableLoggingModes = []string{string(LoggingModeNone), string(LoggingModeAll), string(LoggingModeFailed)}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// Config represents options for HTTP client configuration.
//
// Example of YAML configuration:
//
//	httpClient:
//	  timeout: 30s
//	  waitTimeout: 10s
//	  logger:
//	    enabled: true
//	    mode: failed
//	    slowRequestThreshold: 1s
//	  requestQueue:
//	    maxSockets: 64
//	    maxSocketsPerHost: 2
type Config struct {
	// Timeout is the overall time limit for requests made by the client, admission wait included.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`

	// WaitTimeout limits the time a request may wait for admission.
	WaitTimeout time.Duration `mapstructure:"waitTimeout" yaml:"waitTimeout" json:"waitTimeout"`

	// Log is a configuration for requests logging.
	Log LogConfig `mapstructure:"logger" yaml:"logger" json:"logger"`

	// RequestQueue is a configuration of the queue limiting in-flight requests.
	RequestQueue *reqqueue.Config `mapstructure:"requestQueue" yaml:"requestQueue" json:"requestQueue"`

	keyPrefix string
}

// LogConfig represents configuration for requests logging.
type LogConfig struct {
	Enabled              bool          `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Mode                 LoggingMode   `mapstructure:"mode" yaml:"mode" json:"mode"`
	SlowRequestThreshold time.Duration `mapstructure:"slowRequestThreshold" yaml:"slowRequestThreshold" json:"slowRequestThreshold"`
}

// TransportOpts returns options for LoggingRoundTripper.
func (c *LogConfig) TransportOpts() LoggingRoundTripperOpts {
	return LoggingRoundTripperOpts{Mode: c.Mode, SlowRequestThreshold: c.SlowRequestThreshold}
}

// NewConfig creates a new instance of the Config.
func NewConfig() *Config {
	return NewConfigWithKeyPrefix("")
}

// NewConfigWithKeyPrefix creates a new instance of the Config.
// Allows specifying key prefix which will be used for parsing configuration parameters,
// "httpClient" is used when it's empty.
func NewConfigWithKeyPrefix(keyPrefix string) *Config {
	if keyPrefix == "" {
		keyPrefix = cfgDefaultKeyPrefix
	}
	return &Config{keyPrefix: keyPrefix, RequestQueue: reqqueue.NewConfigWithKeyPrefix(cfgKeyRequestQueue)}
}

// NewDefaultConfig creates a new instance of the Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		keyPrefix:    cfgDefaultKeyPrefix,
		Timeout:      DefaultClientTimeout,
		Log:          LogConfig{Mode: LoggingModeAll},
		RequestQueue: reqqueue.NewDefaultConfig(),
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
// Implements config.KeyPrefixProvider interface.
func (c *Config) KeyPrefix() string {
	if c.keyPrefix == "" {
		return cfgDefaultKeyPrefix
	}
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values for HTTP client in config.DataProvider.
// Implements config.Config interface.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyTimeout, DefaultClientTimeout.String())
	dp.SetDefault(cfgKeyWaitTimeout, "0s")
	dp.SetDefault(cfgKeyLoggerMode, string(LoggingModeAll))
	c.requestQueueConfig().SetProviderDefaults(config.NewKeyPrefixedDataProvider(dp, cfgKeyRequestQueue))
}

// Set sets HTTP client configuration values from config.DataProvider.
// Implements config.Config interface.
func (c *Config) Set(dp config.DataProvider) error {
	var err error

	if c.Timeout, err = dp.GetDuration(cfgKeyTimeout); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return dp.WrapKeyErr(cfgKeyTimeout, fmt.Errorf("should not be negative"))
	}
	if c.WaitTimeout, err = dp.GetDuration(cfgKeyWaitTimeout); err != nil {
		return err
	}
	if c.WaitTimeout < 0 {
		return dp.WrapKeyErr(cfgKeyWaitTimeout, fmt.Errorf("should not be negative"))
	}

	if c.Log.Enabled, err = dp.GetBool(cfgKeyLoggerEnabled); err != nil {
		return err
	}
	modeStr, err := dp.GetStringFromSet(cfgKeyLoggerMode, availableLoggingModes, true)
	if err != nil {
		return err
	}
	c.Log.Mode = LoggingMode(strings.ToLower(modeStr))
	if c.Log.SlowRequestThreshold, err = dp.GetDuration(cfgKeyLoggerSlowRequestThreshold); err != nil {
		return err
	}

	return c.requestQueueConfig().Set(config.NewKeyPrefixedDataProvider(dp, cfgKeyRequestQueue))
}

func (c *Config) requestQueueConfig() *reqqueue.Config {
	if c.RequestQueue == nil {
		c.RequestQueue = reqqueue.NewConfigWithKeyPrefix(cfgKeyRequestQueue)
	}
	return c.RequestQueue
}
