// Package metrics exposes Prometheus metrics for the document database gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "products_service"
	subsystem = "docdb"
)

// Attempt results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder is the subset of metrics used by the connection manager and collection reader.
type Recorder interface {
	RecordConnectAttempt(result string)
	SetConnectionUp(up bool)
	RecordFetchAttempt(collection, result string)
	RecordFetch(collection, status string, duration time.Duration, documents int)
}

// Metrics struct manages all Prometheus metrics.
type Metrics struct {
	// Connection metrics.
	connectAttempts *prometheus.CounterVec
	connectionUp    prometheus.Gauge

	// Fetch metrics.
	fetchAttempts     *prometheus.CounterVec
	fetchDuration     *prometheus.HistogramVec
	documentsReturned *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates a new Metrics instance registered on the default registry.
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewMetricsWithRegistry creates a new Metrics instance (for testing).
func NewMetricsWithRegistry(registry *prometheus.Registry) *Metrics {
	return newMetrics(registry, registry)
}

func newMetrics(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{gatherer: gatherer}

	m.connectAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "connect_attempts_total",
			Help:      "Total number of document database connect attempts",
		},
		[]string{"result"},
	)

	m.connectionUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "connection_up",
			Help:      "1 when the document database connection is established, 0 otherwise",
		},
	)

	m.fetchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fetch_attempts_total",
			Help:      "Total number of collection read attempts",
		},
		[]string{"collection", "result"},
	)

	m.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fetch_duration_seconds",
			Help:      "Time taken to read a full collection, retries included (seconds)",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"collection", "status"},
	)

	m.documentsReturned = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "documents_returned",
			Help:      "Number of documents returned by the last successful read",
		},
		[]string{"collection"},
	)

	registerer.MustRegister(
		m.connectAttempts,
		m.connectionUp,
		m.fetchAttempts,
		m.fetchDuration,
		m.documentsReturned,
	)

	return m
}

// RecordConnectAttempt counts one connect attempt.
func (m *Metrics) RecordConnectAttempt(result string) {
	m.connectAttempts.WithLabelValues(result).Inc()
}

// SetConnectionUp reflects the connection state.
func (m *Metrics) SetConnectionUp(up bool) {
	if up {
		m.connectionUp.Set(1)
		return
	}
	m.connectionUp.Set(0)
}

// RecordFetchAttempt counts one read attempt against a collection.
func (m *Metrics) RecordFetchAttempt(collection, result string) {
	m.fetchAttempts.WithLabelValues(collection, result).Inc()
}

// RecordFetch records the outcome of a full read including retries.
func (m *Metrics) RecordFetch(collection, status string, duration time.Duration, documents int) {
	m.fetchDuration.WithLabelValues(collection, status).Observe(duration.Seconds())
	if status == ResultSuccess {
		m.documentsReturned.WithLabelValues(collection).Set(float64(documents))
	}
}

// Handler returns the metrics HTTP handler for the registry the metrics were created on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Noop discards every observation.
type Noop struct{}

// RecordConnectAttempt implements Recorder.
func (Noop) RecordConnectAttempt(string) {}

// SetConnectionUp implements Recorder.
func (Noop) SetConnectionUp(bool) {}

// RecordFetchAttempt implements Recorder.
func (Noop) RecordFetchAttempt(string, string) {}

// RecordFetch implements Recorder.
func (Noop) RecordFetch(string, string, time.Duration, int) {}
