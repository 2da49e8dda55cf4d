package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"supermarket-dashboard/internal/models"
)

// Metrics owns a private registry so that tests can build as many
// instances as they need. All methods are no-ops on a nil receiver.
type Metrics struct {
	registry         *prometheus.Registry
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	selectionsTotal  *prometheus.CounterVec
	snapshotDuration prometheus.Histogram
	recordsLoaded    prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		selectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_selections_total",
				Help: "Total number of month selections handled",
			},
			[]string{"month"},
		),
		snapshotDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dashboard_snapshot_duration_seconds",
				Help:    "Time spent recomputing a monthly snapshot",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		recordsLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashboard_records_loaded",
				Help: "Number of transactions in the loaded dataset",
			},
		),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) ObserveSelection(month string, duration time.Duration) {
	if m == nil {
		return
	}
	m.selectionsTotal.WithLabelValues(selectionLabel(month)).Inc()
	m.snapshotDuration.Observe(duration.Seconds())
}

// selectionLabel keeps the month label set fixed.
func selectionLabel(month string) string {
	switch {
	case month == "":
		return "all"
	case models.Month(month).IsKnown():
		return month
	default:
		return "unknown"
	}
}

func (m *Metrics) SetRecordsLoaded(n int) {
	if m == nil {
		return
	}
	m.recordsLoaded.Set(float64(n))
}
