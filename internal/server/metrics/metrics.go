// Package metrics exposes Prometheus counters for blob-store traffic, the
// download relay and the HTTP surface.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "notehub"

// Metrics implements prometheus.Collector. A nil *Metrics is valid and
// records nothing, so services can run without a registry in tests.
type Metrics struct {
	blobOpsTotal       *prometheus.CounterVec
	downloadsTotal     *prometheus.CounterVec
	downloadBytesTotal prometheus.Counter
	downloadAborts     prometheus.Counter

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		blobOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blob_operations_total",
				Help:      "Blob store operations by operation and result",
			},
			[]string{"operation", "result"}, // operation: put, remove, open, fetch; result: success, error
		),
		downloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "downloads_total",
				Help:      "Relayed downloads by blob source",
			},
			[]string{"source"}, // managed or external
		),
		downloadBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Bytes streamed to clients by the download relay",
		}),
		downloadAborts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_aborts_total",
			Help:      "Downloads aborted after the response had started",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Time taken for HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.blobOpsTotal,
		m.downloadsTotal,
		m.downloadBytesTotal,
		m.downloadAborts,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	}
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// RecordBlobOperation counts one blob-store call; err decides the result label.
func (m *Metrics) RecordBlobOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.blobOpsTotal.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) RecordDownload(source string, bytes int64) {
	if m == nil {
		return
	}
	m.downloadsTotal.WithLabelValues(source).Inc()
	if bytes > 0 {
		m.downloadBytesTotal.Add(float64(bytes))
	}
}

func (m *Metrics) RecordDownloadAbort(bytes int64) {
	if m == nil {
		return
	}
	m.downloadAborts.Inc()
	if bytes > 0 {
		m.downloadBytesTotal.Add(float64(bytes))
	}
}

// RecordHTTPRequest records a finished request. route is the chi route
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
