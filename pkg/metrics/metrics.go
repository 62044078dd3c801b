package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Storage metrics
	EventsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rostra_events_total",
			Help: "Total number of events stored",
		},
	)

	HeadsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rostra_heads_total",
			Help: "Total number of (author, head) entries currently tracked",
		},
	)

	ContentStateTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rostra_content_state_total",
			Help: "Number of events by content state",
		},
		[]string{"state"},
	)

	ContentRefcountSum = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rostra_content_refcount_sum",
			Help: "Sum of reference counts across all content entries",
		},
	)

	// Missing-content fetcher metrics
	MissingQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rostra_missing_queue_depth",
			Help: "Number of events awaiting a content fetch",
		},
	)

	FetchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rostra_fetch_attempts_total",
			Help: "Total number of content fetch attempts by outcome",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	FetchBackoffSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rostra_fetch_backoff_seconds",
			Help: "Current backoff delay applied to the next scheduled fetch",
		},
	)

	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rostra_fetch_duration_seconds",
			Help:    "Time taken to fetch a content payload from the transport collaborator",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Engine operation metrics
	EventsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rostra_events_ingested_total",
			Help: "Total number of events ingested by outcome",
		},
		[]string{"outcome"}, // "accepted", "duplicate", "rejected"
	)

	InsertEventDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rostra_insert_event_duration_seconds",
			Help:    "Time taken to commit insert_event's write transaction",
			Buckets: prometheus.DefBuckets,
		},
	)

	SideEffectDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rostra_side_effect_duration_seconds",
			Help:    "Time taken to run a kind's side-effect handler",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rostra_api_requests_total",
			Help: "Total number of API requests by route and status class",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rostra_api_request_duration_seconds",
			Help:    "API request duration in seconds by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(EventsTotal)
	prometheus.MustRegister(HeadsTotal)
	prometheus.MustRegister(ContentStateTotal)
	prometheus.MustRegister(ContentRefcountSum)
	prometheus.MustRegister(MissingQueueDepth)
	prometheus.MustRegister(FetchAttemptsTotal)
	prometheus.MustRegister(FetchBackoffSeconds)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(EventsIngestedTotal)
	prometheus.MustRegister(InsertEventDuration)
	prometheus.MustRegister(SideEffectDuration)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
