/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package reqqueue

import (
	"fmt"
	"time"

	"github.com/acronis/go-hostlimit/config"
)

const cfgDefaultKeyPrefix = "requestQueue"

const (
	cfgKeyIgnorePorts       = "ignorePorts"
	cfgKeyIgnoreProtocols   = "ignoreProtocols"
	cfgKeyIgnoreSubdomains  = "ignoreSubdomains"
	cfgKeyMaxSockets        = "maxSockets"
	cfgKeyMaxSocketsPerHost = "maxSocketsPerHost"
	cfgKeyRateLimit         = "rateLimit"
	cfgKeyHostRules         = "hostRules"
)

// Config represents a set of configuration parameters for the Queue.
// Negative maxSockets and maxSocketsPerHost values mean no limit.
//
// Example of YAML configuration:
//
//	requestQueue:
//	  maxSockets: 100
//	  maxSocketsPerHost: 4
//	  rateLimit: 50ms
//	  hostRules:
//	    - hosts: ["*.example.com"]
//	      maxSocketsPerHost: 1
//	      rateLimit: 1s
type Config struct {
	IgnorePorts       bool             `mapstructure:"ignorePorts" yaml:"ignorePorts" json:"ignorePorts"`
	IgnoreProtocols   bool             `mapstructure:"ignoreProtocols" yaml:"ignoreProtocols" json:"ignoreProtocols"`
	IgnoreSubdomains  bool             `mapstructure:"ignoreSubdomains" yaml:"ignoreSubdomains" json:"ignoreSubdomains"`
	MaxSockets        int              `mapstructure:"maxSockets" yaml:"maxSockets" json:"maxSockets"`
	MaxSocketsPerHost int              `mapstructure:"maxSocketsPerHost" yaml:"maxSocketsPerHost" json:"maxSocketsPerHost"`
	RateLimit         time.Duration    `mapstructure:"rateLimit" yaml:"rateLimit" json:"rateLimit"`
	HostRules         []HostRuleConfig `mapstructure:"hostRules" yaml:"hostRules" json:"hostRules"`

	keyPrefix string
}

// HostRuleConfig is a configuration of a single host rule. Omitted fields are inherited.
type HostRuleConfig struct {
	Hosts             []string             `mapstructure:"hosts" yaml:"hosts" json:"hosts"`
	IgnorePorts       *bool                `mapstructure:"ignorePorts" yaml:"ignorePorts" json:"ignorePorts"`
	IgnoreProtocols   *bool                `mapstructure:"ignoreProtocols" yaml:"ignoreProtocols" json:"ignoreProtocols"`
	IgnoreSubdomains  *bool                `mapstructure:"ignoreSubdomains" yaml:"ignoreSubdomains" json:"ignoreSubdomains"`
	MaxSocketsPerHost *int                 `mapstructure:"maxSocketsPerHost" yaml:"maxSocketsPerHost" json:"maxSocketsPerHost"`
	RateLimit         *config.TimeDuration `mapstructure:"rateLimit" yaml:"rateLimit" json:"rateLimit"`
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config.
func NewConfig() *Config {
	return NewConfigWithKeyPrefix("")
}

// NewConfigWithKeyPrefix creates a new instance of the Config.
// Allows specifying key prefix which will be used for parsing configuration parameters,
// "requestQueue" is used when it's empty.
func NewConfigWithKeyPrefix(keyPrefix string) *Config {
	if keyPrefix == "" {
		keyPrefix = cfgDefaultKeyPrefix
	}
	return &Config{keyPrefix: keyPrefix}
}

// NewDefaultConfig creates a new instance of the Config with values matching DefaultOptions.
func NewDefaultConfig() *Config {
	opts := DefaultOptions()
	return &Config{
		keyPrefix:         cfgDefaultKeyPrefix,
		IgnorePorts:       opts.IgnorePorts,
		IgnoreProtocols:   opts.IgnoreProtocols,
		IgnoreSubdomains:  opts.IgnoreSubdomains,
		MaxSockets:        opts.MaxSockets,
		MaxSocketsPerHost: opts.MaxSocketsPerHost,
		RateLimit:         opts.RateLimit,
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

// SetProviderDefaults sets default configuration values for the queue in config.DataProvider.
// Implements config.Config interface.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	opts := DefaultOptions()
	dp.SetDefault(cfgKeyIgnorePorts, opts.IgnorePorts)
	dp.SetDefault(cfgKeyIgnoreProtocols, opts.IgnoreProtocols)
	dp.SetDefault(cfgKeyIgnoreSubdomains, opts.IgnoreSubdomains)
	dp.SetDefault(cfgKeyMaxSockets, opts.MaxSockets)
	dp.SetDefault(cfgKeyMaxSocketsPerHost, opts.MaxSocketsPerHost)
	dp.SetDefault(cfgKeyRateLimit, opts.RateLimit.String())
}

// Set sets queue configuration values from config.DataProvider.
// Implements config.Config interface.
func (c *Config) Set(dp config.DataProvider) error {
	var err error

	if c.IgnorePorts, err = dp.GetBool(cfgKeyIgnorePorts); err != nil {
		return err
	}
	if c.IgnoreProtocols, err = dp.GetBool(cfgKeyIgnoreProtocols); err != nil {
		return err
	}
	if c.IgnoreSubdomains, err = dp.GetBool(cfgKeyIgnoreSubdomains); err != nil {
		return err
	}
	if c.MaxSockets, err = dp.GetInt(cfgKeyMaxSockets); err != nil {
		return err
	}
	if c.MaxSocketsPerHost, err = dp.GetInt(cfgKeyMaxSocketsPerHost); err != nil {
		return err
	}
	if c.RateLimit, err = dp.GetDuration(cfgKeyRateLimit); err != nil {
		return err
	}
	if c.RateLimit < 0 {
		return dp.WrapKeyErr(cfgKeyRateLimit, fmt.Errorf("should not be negative"))
	}

	var hostRules []HostRuleConfig
	if err = dp.UnmarshalKey(cfgKeyHostRules, &hostRules, config.WithTextUnmarshalerHook()); err != nil {
		return err
	}
	for i := range hostRules {
		if len(hostRules[i].Hosts) == 0 {
			return dp.WrapKeyErr(cfgKeyHostRules, fmt.Errorf("rule #%d: hosts should not be empty", i))
		}
		if hostRules[i].RateLimit != nil && *hostRules[i].RateLimit < 0 {
			return dp.WrapKeyErr(cfgKeyHostRules, fmt.Errorf("rule #%d: rate limit should not be negative", i))
		}
	}
	c.HostRules = hostRules

	return nil
}

// Options returns queue options built from the configuration.
func (c *Config) Options() Options {
	return Options{
		IgnorePorts:       c.IgnorePorts,
		IgnoreProtocols:   c.IgnoreProtocols,
		IgnoreSubdomains:  c.IgnoreSubdomains,
		MaxSockets:        c.MaxSockets,
		MaxSocketsPerHost: c.MaxSocketsPerHost,
		RateLimit:         c.RateLimit,
	}
}

// Rules returns host rules built from the configuration.
func (c *Config) Rules() []HostRule {
	if len(c.HostRules) == 0 {
		return nil
	}
	rules := make([]HostRule, 0, len(c.HostRules))
	for i := range c.HostRules {
		rc := c.HostRules[i]
		rule := HostRule{
			Hosts: append([]string(nil), rc.Hosts...),
			Overrides: Overrides{
				IgnorePorts:       rc.IgnorePorts,
				IgnoreProtocols:   rc.IgnoreProtocols,
				IgnoreSubdomains:  rc.IgnoreSubdomains,
				MaxSocketsPerHost: rc.MaxSocketsPerHost,
			},
		}
		if rc.RateLimit != nil {
			d := time.Duration(*rc.RateLimit)
			rule.Overrides.RateLimit = &d
		}
		rules = append(rules, rule)
	}
	return rules
}
