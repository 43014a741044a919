package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Standard histogram buckets
var (
	// DurationBuckets: 10ms to 10min for tree removals
	DurationBuckets = []float64{0.01, 0.1, 0.5, 1, 5, 30, 60, 600}

	// APIBuckets: 1ms to 1s for metrics server requests
	APIBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1}
)

// NewDurationHistogram creates a histogram for durations in seconds
// using DurationBuckets
func NewDurationHistogram(name, help string) prometheus.Histogram {
	return prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    name,
		Help:    help,
		Buckets: DurationBuckets,
	})
}

// NewCounter creates a standard counter metric
func NewCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: name,
		Help: help,
	})
}

// NewCounterVec creates a labeled counter
func NewCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, labels)
}
