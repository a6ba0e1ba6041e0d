/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package reqqueue

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/acronis/go-hostlimit/testutil"
)

func TestPrometheusMetrics(t *testing.T) {
	pm := NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{
		Namespace:         "test",
		ConstLabels:       prometheus.Labels{"service": "crawler"},
		CurriedLabelNames: []string{"queue"},
	})
	curried := pm.MustCurryWith(prometheus.Labels{"queue": "outbound"})

	h := &recordingHandler{}
	q := mustNewQueue(t, h, exactHostOptions(Unlimited, 1), QueueOpts{MetricsCollector: curried})

	mustEnqueue(t, q, "a.com", "a1")
	id2 := mustEnqueue(t, q, "a.com", "a2")
	mustEnqueue(t, q, "a.com", "a3")
	mustEnqueue(t, q, "b.com", "b1")

	require.Equal(t, 2.0, promtestutil.ToFloat64(pm.AdmittedTotal))
	require.Equal(t, 2.0, promtestutil.ToFloat64(pm.ActiveItems))
	require.Equal(t, 2.0, promtestutil.ToFloat64(pm.PendingItems))

	require.NoError(t, q.Dequeue(id2))
	require.Equal(t, 1.0, promtestutil.ToFloat64(pm.DequeuedTotal))
	require.Equal(t, 1.0, promtestutil.ToFloat64(pm.PendingItems))

	h.Delivery("a1").Done()
	h.Delivery("b1").Done()
	h.Delivery("a3").Done()
	require.Equal(t, 3.0, promtestutil.ToFloat64(pm.AdmittedTotal))
	require.Equal(t, 0.0, promtestutil.ToFloat64(pm.ActiveItems))
	require.Equal(t, 0.0, promtestutil.ToFloat64(pm.PendingItems))
	testutil.RequireSamplesCountInHistogram(t, pm.AdmissionWaitDuration, 3)
}

func TestPrometheusMetrics_Register(t *testing.T) {
	pm := NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{Namespace: "test_register"})
	pm.MustRegister()
	defer pm.Unregister()
	require.Panics(t, pm.MustRegister)
}
