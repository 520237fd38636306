// Package metrics provides custom Prometheus metrics for the menumaker pipeline.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GenerationMetrics contains the Prometheus metrics for menu generation,
// image acquisition and image inlining.
type GenerationMetrics struct {
	MenusGenerated     prometheus.Counter
	MenusFailed        prometheus.Counter
	GenerationDuration prometheus.Histogram
	ImageFetches       *prometheus.CounterVec
	ImageFetchDuration *prometheus.HistogramVec
	InlineResults      *prometheus.CounterVec
	registry           *prometheus.Registry
}

// NewGenerationMetrics creates a new instance of GenerationMetrics and
// registers it with the given registry.
func NewGenerationMetrics(registry *prometheus.Registry) (*GenerationMetrics, error) {
	m := &GenerationMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize generation metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register generation metrics: %w", err)
	}
	return m, nil
}

func (m *GenerationMetrics) initMetrics() error {
	m.MenusGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "menumaker_menus_generated_total",
		Help: "Total number of menus generated successfully.",
	})

	m.MenusFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "menumaker_menus_failed_total",
		Help: "Total number of menu generations that failed.",
	})

	m.GenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "menumaker_menu_generation_duration_seconds",
		Help:    "Duration of menu text generation in seconds.",
		Buckets: prometheus.ExponentialBuckets(BucketStart1s, BucketFactor2, BucketCount10), // 1s to ~17m
	})

	m.ImageFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menumaker_image_fetches_total",
			Help: "Total number of per-item image fetches.",
		},
		[]string{"source", "outcome"},
	)

	m.ImageFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "menumaker_image_fetch_duration_seconds",
			Help:    "Duration of per-item image fetches in seconds.",
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10), // 100ms to ~51s
		},
		[]string{"source"},
	)

	m.InlineResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menumaker_image_inlines_total",
			Help: "Total number of image inlining attempts.",
		},
		[]string{"outcome"},
	)

	return nil
}

// RecordGeneration records the outcome and duration of one menu generation.
func (m *GenerationMetrics) RecordGeneration(success bool, duration time.Duration) {
	if success {
		m.MenusGenerated.Inc()
	} else {
		m.MenusFailed.Inc()
	}
	m.GenerationDuration.Observe(duration.Seconds())
}

// RecordImageFetch records the outcome and duration of a single item fetch.
func (m *GenerationMetrics) RecordImageFetch(source string, success bool, duration time.Duration) {
	m.ImageFetches.WithLabelValues(source, outcome(success)).Inc()
	m.ImageFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordInline records the outcome of converting one image to embedded data.
func (m *GenerationMetrics) RecordInline(success bool) {
	m.InlineResults.WithLabelValues(outcome(success)).Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *GenerationMetrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.MenusGenerated.Desc()
	ch <- m.MenusFailed.Desc()
	ch <- m.GenerationDuration.Desc()
	m.ImageFetches.Describe(ch)
	m.ImageFetchDuration.Describe(ch)
	m.InlineResults.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *GenerationMetrics) Collect(ch chan<- prometheus.Metric) {
	ch <- m.MenusGenerated
	ch <- m.MenusFailed
	ch <- m.GenerationDuration
	m.ImageFetches.Collect(ch)
	m.ImageFetchDuration.Collect(ch)
	m.InlineResults.Collect(ch)
}
