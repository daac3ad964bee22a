package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	registry *prometheus.Registry

	// Report metrics
	reportsComputed   *prometheus.CounterVec
	reportErrors      *prometheus.CounterVec
	recordsAggregated prometheus.Counter
	reportDuration    *prometheus.HistogramVec

	// Ingestion metrics
	callsIngested prometheus.Counter
	ingestErrors  prometheus.Counter

	// WebSocket metrics
	wsConnectionsTotal prometheus.Counter
	wsActive           prometheus.Gauge
	liveBroadcasts     prometheus.Counter
	liveErrors         prometheus.Counter

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New creates a metrics set on its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reportsComputed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callcenter_reports_computed_total",
				Help: "Total number of reports computed",
			},
			[]string{"kind"},
		),
		reportErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callcenter_report_errors_total",
				Help: "Total number of failed report requests",
			},
			[]string{"kind"},
		),
		recordsAggregated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "callcenter_records_aggregated_total",
			Help: "Total number of call records fed into aggregations",
		}),
		reportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "callcenter_report_duration_seconds",
				Help:    "Time spent loading and aggregating a report",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		callsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "callcenter_calls_ingested_total",
			Help: "Total number of call records accepted",
		}),
		ingestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "callcenter_ingest_errors_total",
			Help: "Total number of rejected or failed call records",
		}),
		wsConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "callcenter_websocket_connections_total",
			Help: "Total number of WebSocket connections accepted",
		}),
		wsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "callcenter_websocket_active_connections",
			Help: "Number of currently connected WebSocket clients",
		}),
		liveBroadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "callcenter_live_broadcasts_total",
			Help: "Total number of live dashboard broadcasts",
		}),
		liveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "callcenter_live_errors_total",
			Help: "Total number of failed live dashboard computations",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callcenter_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"endpoint", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "callcenter_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),

		m.reportsComputed,
		m.reportErrors,
		m.recordsAggregated,
		m.reportDuration,

		m.callsIngested,
		m.ingestErrors,

		m.wsConnectionsTotal,
		m.wsActive,
		m.liveBroadcasts,
		m.liveErrors,

		m.httpRequestsTotal,
		m.httpRequestDuration,
	)
	return m
}

// RecordReport records a successfully computed report
func (m *Metrics) RecordReport(kind string, records int, duration time.Duration) {
	m.reportsComputed.WithLabelValues(kind).Inc()
	m.recordsAggregated.Add(float64(records))
	m.reportDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordReportError increments the report error counter
func (m *Metrics) RecordReportError(kind string) {
	m.reportErrors.WithLabelValues(kind).Inc()
}

// RecordCallIngested increments the accepted call counter
func (m *Metrics) RecordCallIngested() {
	m.callsIngested.Inc()
}

// RecordIngestError increments the ingestion error counter
func (m *Metrics) RecordIngestError() {
	m.ingestErrors.Inc()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.wsConnectionsTotal.Inc()
	m.wsActive.Inc()
}

// RecordWebSocketDisconnect decrements the active connection gauge
func (m *Metrics) RecordWebSocketDisconnect() {
	m.wsActive.Dec()
}

// RecordLiveBroadcast increments the live broadcast counter
func (m *Metrics) RecordLiveBroadcast() {
	m.liveBroadcasts.Inc()
}

// RecordLiveError increments the live error counter
func (m *Metrics) RecordLiveError() {
	m.liveErrors.Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ReportsComputed returns the computed-report counter of kind
func (m *Metrics) ReportsComputed(kind string) prometheus.Counter {
	return m.reportsComputed.WithLabelValues(kind)
}

// ReportErrors returns the report error counter of kind
func (m *Metrics) ReportErrors(kind string) prometheus.Counter {
	return m.reportErrors.WithLabelValues(kind)
}

// CallsIngested returns the accepted call counter
func (m *Metrics) CallsIngested() prometheus.Counter {
	return m.callsIngested
}

// ActiveConnections returns the connected websocket client gauge
func (m *Metrics) ActiveConnections() prometheus.Gauge {
	return m.wsActive
}

// LiveBroadcasts returns the live broadcast counter
func (m *Metrics) LiveBroadcasts() prometheus.Counter {
	return m.liveBroadcasts
}

// LiveErrors returns the live error counter
func (m *Metrics) LiveErrors() prometheus.Counter {
	return m.liveErrors
}

// Registry returns the registry all metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Registry:          m.registry,
	})
}
