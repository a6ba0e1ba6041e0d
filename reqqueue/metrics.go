/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package reqqueue

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultAdmissionWaitBuckets are buckets (in seconds) for the admission wait histogram.
var DefaultAdmissionWaitBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// MetricsCollector represents a collector of metrics to analyze how the queue admits items.
type MetricsCollector interface {
	// SetPending sets the number of items waiting for admission.
	SetPending(int)

	// SetActive sets the number of admitted items that are not done yet.
	SetActive(int)

	// IncAdmitted increments the total number of admitted items.
	IncAdmitted()

	// IncDequeued increments the total number of pending items removed by Dequeue.
	IncDequeued()

	// ObserveAdmissionWait observes the time an item spent pending.
	ObserveAdmissionWait(time.Duration)
}

// PrometheusMetricsOpts represents options for PrometheusMetrics.
type PrometheusMetricsOpts struct {
	// Namespace is a namespace for metrics. It will be prepended to all metric names.
	Namespace string

	// ConstLabels is a set of labels that will be applied to all metrics.
	ConstLabels prometheus.Labels

	// CurriedLabelNames is a list of label names that will be curried with the provided labels.
	// If it's not empty, PrometheusMetrics.MustCurryWith must be called further with the same labels.
	CurriedLabelNames []string

	// AdmissionWaitBuckets is a list of buckets for the admission wait histogram.
	// DefaultAdmissionWaitBuckets is used if empty.
	AdmissionWaitBuckets []float64
}

// PrometheusMetrics represents Prometheus metrics for the queue.
type PrometheusMetrics struct {
	PendingItems          *prometheus.GaugeVec
	ActiveItems           *prometheus.GaugeVec
	AdmittedTotal         *prometheus.CounterVec
	DequeuedTotal         *prometheus.CounterVec
	AdmissionWaitDuration *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a new instance of PrometheusMetrics with default options.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{})
}

// NewPrometheusMetricsWithOpts creates a new instance of PrometheusMetrics with the provided options.
func NewPrometheusMetricsWithOpts(opts PrometheusMetricsOpts) *PrometheusMetrics {
	buckets := opts.AdmissionWaitBuckets
	if len(buckets) == 0 {
		buckets = DefaultAdmissionWaitBuckets
	}

	pendingItems := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   opts.Namespace,
			Name:        "request_queue_pending_items",
			Help:        "Current number of items waiting for admission.",
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	activeItems := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   opts.Namespace,
			Name:        "request_queue_active_items",
			Help:        "Current number of admitted items that are not done yet.",
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	admittedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "request_queue_admitted_total",
			Help:        "Number of admitted items.",
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	dequeuedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "request_queue_dequeued_total",
			Help:        "Number of pending items removed before admission.",
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	admissionWait := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "request_queue_admission_wait_seconds",
			Help:        "Time items spend pending before admission.",
			Buckets:     buckets,
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	return &PrometheusMetrics{
		PendingItems:          pendingItems,
		ActiveItems:           activeItems,
		AdmittedTotal:         admittedTotal,
		DequeuedTotal:         dequeuedTotal,
		AdmissionWaitDuration: admissionWait,
	}
}

// MustCurryWith curries the metrics collector with the provided labels.
func (pm *PrometheusMetrics) MustCurryWith(labels prometheus.Labels) *PrometheusMetrics {
	return &PrometheusMetrics{
		PendingItems:          pm.PendingItems.MustCurryWith(labels),
		ActiveItems:           pm.ActiveItems.MustCurryWith(labels),
		AdmittedTotal:         pm.AdmittedTotal.MustCurryWith(labels),
		DequeuedTotal:         pm.DequeuedTotal.MustCurryWith(labels),
		AdmissionWaitDuration: pm.AdmissionWaitDuration.MustCurryWith(labels).(*prometheus.HistogramVec),
	}
}

// MustRegister does registration of metrics collector in Prometheus and panics if any error occurs.
func (pm *PrometheusMetrics) MustRegister() {
	prometheus.MustRegister(
		pm.PendingItems,
		pm.ActiveItems,
		pm.AdmittedTotal,
		pm.DequeuedTotal,
		pm.AdmissionWaitDuration,
	)
}

// Unregister cancels registration of metrics collector in Prometheus.
func (pm *PrometheusMetrics) Unregister() {
	prometheus.Unregister(pm.PendingItems)
	prometheus.Unregister(pm.ActiveItems)
	prometheus.Unregister(pm.AdmittedTotal)
	prometheus.Unregister(pm.DequeuedTotal)
	prometheus.Unregister(pm.AdmissionWaitDuration)
}

// SetPending sets the number of items waiting for admission.
func (pm *PrometheusMetrics) SetPending(n int) {
	pm.PendingItems.With(nil).Set(float64(n))
}

// SetActive sets the number of admitted items that are not done yet.
func (pm *PrometheusMetrics) SetActive(n int) {
	pm.ActiveItems.With(nil).Set(float64(n))
}

// IncAdmitted increments the total number of admitted items.
func (pm *PrometheusMetrics) IncAdmitted() {
	pm.AdmittedTotal.With(nil).Inc()
}

// IncDequeued increments the total number of pending items removed by Dequeue.
func (pm *PrometheusMetrics) IncDequeued() {
	pm.DequeuedTotal.With(nil).Inc()
}

// ObserveAdmissionWait observes the time an item spent pending.
func (pm *PrometheusMetrics) ObserveAdmissionWait(d time.Duration) {
	pm.AdmissionWaitDuration.With(nil).Observe(d.Seconds())
}

type disabledMetrics struct{}

func (disabledMetrics) SetPending(int)                     {}
func (disabledMetrics) SetActive(int)                      {}
func (disabledMetrics) IncAdmitted()                       {}
func (disabledMetrics) IncDequeued()                       {}
func (disabledMetrics) ObserveAdmissionWait(time.Duration) {}
