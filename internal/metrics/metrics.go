package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/honeycarbs/jobscout/internal/domain/job"
)

const namespace = "jobscout"

// Source run outcomes
const (
	StatusOK          = "ok"
	StatusPartial     = "partial"
	StatusSoftBlocked = "soft_blocked"
	StatusFailed      = "failed"
)

// Metrics holds the Prometheus collectors of a process. It implements
// job.Recorder.
type Metrics struct {
	SourceRunsTotal     *prometheus.CounterVec
	SourceListingsTotal *prometheus.CounterVec
	SourceDuration      *prometheus.HistogramVec
	SourcesInFlight     *prometheus.GaugeVec
	SearchDuration      prometheus.Histogram
	SearchListings      prometheus.Histogram

	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		SourceRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_runs_total",
				Help:      "Adapter runs by source and outcome",
			},
			[]string{"source", "status"},
		),
		SourceListingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_listings_total",
				Help:      "Valid listings returned by each source",
			},
			[]string{"source"},
		),
		SourceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "source_duration_seconds",
				Help:      "Adapter run duration in seconds, including rate limiter waits",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"source"},
		),
		SourcesInFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sources_in_flight",
				Help:      "Adapters currently running",
			},
			[]string{"source"},
		),
		SearchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "End to end search duration in seconds",
				Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160, 320},
			},
		),
		SearchListings: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_listings",
				Help:      "Listings returned per search after dedup and truncation",
				Buckets:   []float64{0, 5, 10, 25, 50, 100, 200},
			},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "path", "status"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.SourceRunsTotal,
		m.SourceListingsTotal,
		m.SourceDuration,
		m.SourcesInFlight,
		m.SearchDuration,
		m.SearchListings,
		m.httpRequestDuration,
		m.httpRequestsTotal,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveSource records one finished adapter run
func (m *Metrics) ObserveSource(source string, listings int, err error, elapsed time.Duration) {
	m.SourceRunsTotal.WithLabelValues(source, Status(listings, err)).Inc()
	m.SourceListingsTotal.WithLabelValues(source).Add(float64(listings))
	m.SourceDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveSearch records one finished search
func (m *Metrics) ObserveSearch(listings int, elapsed time.Duration) {
	m.SearchDuration.Observe(elapsed.Seconds())
	m.SearchListings.Observe(float64(listings))
}

func (m *Metrics) SourceStarted(source string) {
	m.SourcesInFlight.WithLabelValues(source).Inc()
}

func (m *Metrics) SourceFinished(source string) {
	m.SourcesInFlight.WithLabelValues(source).Dec()
}

// Status classifies an adapter outcome
func Status(listings int, err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, job.ErrSoftBlocked):
		return StatusSoftBlocked
	case listings > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}

var _ job.Recorder = (*Metrics)(nil)
