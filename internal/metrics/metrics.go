// Package metrics holds the Prometheus collectors of the search engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gedcom_search",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"status"}, // "ok" / "partial" / "error"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "gedcom_search",
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	RecordsScoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gedcom_search",
			Name:      "records_scored_total",
			Help:      "Total number of records scored, by record type",
		},
		[]string{"record_type"},
	)

	RecordWarningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gedcom_search",
			Name:      "record_warnings_total",
			Help:      "Records skipped because the provider failed to read them",
		},
		[]string{"record_type"},
	)

	PhoneticCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gedcom_search",
			Name:      "phonetic_cache_total",
			Help:      "Phonetic code cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RecordsStored = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "gedcom_search",
			Name:      "records_stored",
			Help:      "Number of records held by the record store",
		},
		[]string{"record_type"},
	)

	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gedcom_search",
			Name:      "jobs_total",
			Help:      "Background jobs that reached a final status",
		},
		[]string{"type", "status"},
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gedcom_search",
			Name:      "job_duration_seconds",
			Help:      "Background job execution time in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"type"},
	)

	JobsRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gedcom_search",
			Name:      "jobs_running",
			Help:      "Background jobs currently running",
		},
	)
)

var registerOnce sync.Once

// Register registers the collectors with the default Prometheus registry.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SearchRequestsTotal)
		prometheus.MustRegister(SearchDuration)
		prometheus.MustRegister(RecordsScoredTotal)
		prometheus.MustRegister(RecordWarningsTotal)
		prometheus.MustRegister(PhoneticCacheTotal)
		prometheus.MustRegister(RecordsStored)
		prometheus.MustRegister(JobsTotal)
		prometheus.MustRegister(JobDuration)
		prometheus.MustRegister(JobsRunning)
	})
}
