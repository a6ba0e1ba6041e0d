/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package testutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stretchr/testify/require"
)

type tHelper interface {
	Helper()
}

// RequireNoErrorsInChannel reads the closed channel to the end and asserts that only nil errors were sent to it.
func RequireNoErrorsInChannel(t require.TestingT, c <-chan error, msgAndArgs ...interface{}) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	var errs []string
	for err := range c {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) != 0 {
		require.FailNow(t, fmt.Sprintf("Received %d unexpected error(s):\n\t%s", len(errs), strings.Join(errs, "\n\t")), msgAndArgs...)
	}
}

// RequireErrorIsAny asserts that err's chain matches at least one of the targets.
func RequireErrorIsAny(t require.TestingT, err error, targets []error, msgAndArgs ...interface{}) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	for _, target := range targets {
		if errors.Is(err, target) {
			return
		}
	}
	wantTexts := make([]string, 0, len(targets))
	for _, target := range targets {
		wantTexts = append(wantTexts, fmt.Sprintf("%q", target.Error()))
	}
	require.FailNow(t, fmt.Sprintf("At least one target error should be in err chain:\n"+
		"expected: [%s]\n"+
		"in chain: %s", strings.Join(wantTexts, "; "), errorChain(err)), msgAndArgs...)
}

func errorChain(err error) string {
	var chain []string
	for ; err != nil; err = errors.Unwrap(err) {
		chain = append(chain, fmt.Sprintf("%q", err.Error()))
	}
	return strings.Join(chain, "\n\t")
}
