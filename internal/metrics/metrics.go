// Package metrics exposes performance counters for exercise detection and
// correction generation as Prometheus collectors.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "corriger"

// Collector groups every metric of the application on its own registry.
type Collector struct {
	registry *prometheus.Registry

	Detections         *prometheus.CounterVec
	DetectionSeconds   prometheus.Histogram
	ExercisesDetected  prometheus.Counter
	CacheEvictions     prometheus.Counter
	Corrections        *prometheus.CounterVec
	CorrectionFailures *prometheus.CounterVec
	CorrectionSeconds  prometheus.Histogram
}

// New creates a Collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Detections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "detections_total",
				Help:      "Exercise detection passes, by cache result",
			},
			[]string{"cache"},
		),
		DetectionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "detection_duration_seconds",
			Help:      "Duration of exercise detection passes",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1},
		}),
		ExercisesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exercises_detected_total",
			Help:      "Exercises returned by detection passes",
		}),
		CacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exercise_cache_evictions_total",
			Help:      "Documents evicted from the exercise cache",
		}),
		Corrections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "corrections_total",
				Help:      "Corrections produced, by source",
			},
			[]string{"source"},
		),
		CorrectionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "correction_failures_total",
				Help:      "Failed correction requests, by error code",
			},
			[]string{"code"},
		),
		CorrectionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "correction_duration_seconds",
			Help:      "Duration of model calls producing a correction",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
	}

	c.registry.MustRegister(
		c.Detections,
		c.DetectionSeconds,
		c.ExercisesDetected,
		c.CacheEvictions,
		c.Corrections,
		c.CorrectionFailures,
		c.CorrectionSeconds,
	)
	return c
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveDetection records one detection pass.
func (c *Collector) ObserveDetection(elapsed time.Duration, exercises int, cacheHit bool) {
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	c.Detections.WithLabelValues(label).Inc()
	c.DetectionSeconds.Observe(elapsed.Seconds())
	c.ExercisesDetected.Add(float64(exercises))
}

// ObserveCacheEviction records one exercise cache eviction.
func (c *Collector) ObserveCacheEviction() {
	c.CacheEvictions.Inc()
}

// ObserveCorrection records a correction served from the model or the cache.
func (c *Collector) ObserveCorrection(elapsed time.Duration, fromCache bool) {
	if fromCache {
		c.Corrections.WithLabelValues("cache").Inc()
		return
	}
	c.Corrections.WithLabelValues("model").Inc()
	c.CorrectionSeconds.Observe(elapsed.Seconds())
}

// ObserveCorrectionFailure records a failed correction request.
func (c *Collector) ObserveCorrectionFailure(code string) {
	if code == "" {
		code = "unknown"
	}
	c.CorrectionFailures.WithLabelValues(code).Inc()
}

// WriteText writes every metric in the Prometheus text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
