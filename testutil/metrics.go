/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package testutil

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertSamplesCountInHistogram asserts that the histogram collector (a plain or curried histogram vector
// is also accepted) contains the specified number of samples summed over all its series.
func AssertSamplesCountInHistogram(t assert.TestingT, hist prometheus.Collector, wantSamplesCount int) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	reg := prometheus.NewPedanticRegistry()
	if !assert.NoError(t, reg.Register(hist)) {
		return false
	}
	families, err := reg.Gather()
	if !assert.NoError(t, err) {
		return false
	}
	var gotSamplesCount uint64
	for _, family := range families {
		for _, m := range family.GetMetric() {
			gotSamplesCount += m.GetHistogram().GetSampleCount()
		}
	}
	return assert.Equal(t, wantSamplesCount, int(gotSamplesCount))
}

// RequireSamplesCountInHistogram calls AssertSamplesCountInHistogram and fails test immediately in case of error.
func RequireSamplesCountInHistogram(t require.TestingT, hist prometheus.Collector, wantSamplesCount int) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	if AssertSamplesCountInHistogram(t, hist, wantSamplesCount) {
		return
	}
	t.FailNow()
}
