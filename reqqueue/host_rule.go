/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package reqqueue

import (
	"fmt"
	"strings"

	"github.com/vasayxtx/go-glob"
)

// HostRule overrides options for targets whose hostname matches one of the glob patterns
// (e.g. "*.example.com"). Per-call overrides passed to EnqueueWithOpts take precedence over rules.
type HostRule struct {
	Hosts     []string
	Overrides Overrides
}

type compiledHostRule struct {
	matchers  []func(string) bool
	overrides Overrides
}

func compileHostRules(rules []HostRule) ([]compiledHostRule, error) {
	compiled := make([]compiledHostRule, 0, len(rules))
	for i := range rules {
		if len(rules[i].Hosts) == 0 {
			return nil, fmt.Errorf("host rule #%d: hosts should not be empty", i)
		}
		cr := compiledHostRule{overrides: rules[i].Overrides}
		for _, pattern := range rules[i].Hosts {
			if pattern == "" {
				return nil, fmt.Errorf("host rule #%d: host pattern should not be empty", i)
			}
			cr.matchers = append(cr.matchers, glob.Compile(strings.ToLower(pattern)))
		}
		compiled = append(compiled, cr)
	}
	return compiled, nil
}

// matchHostRule returns overrides of the first rule matching the hostname.
func matchHostRule(rules []compiledHostRule, hostname string) *Overrides {
	hostname = strings.ToLower(hostname)
	for i := range rules {
		for _, match := range rules[i].matchers {
			if match(hostname) {
				return &rules[i].overrides
			}
		}
	}
	return nil
}
