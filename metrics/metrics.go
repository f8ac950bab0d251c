/*
Package metrics implements the prometheus instrumentation of the
proxy: how many responses carried connection-specific headers, how many
header lines were removed by name, and the overall response latency.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	promNamespace         = "hopstrip"
	promSanitizeSubsystem = "sanitize"
	promResponseSubsystem = "response"
)

// Options for initializing the metrics backend.
type Options struct {

	// When set, the Go runtime and process collectors are
	// registered, too.
	EnableRuntimeMetrics bool
}

// Metrics is the prometheus metrics backend.
type Metrics struct {
	registry   *prometheus.Registry
	removedM   *prometheus.CounterVec
	sanitizedM prometheus.Counter
	responseM  *prometheus.HistogramVec
}

// New creates a metrics backend with its own registry.
func New(o Options) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		removedM: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: promSanitizeSubsystem,
			Name:      "removed_total",
			Help:      "Total number of removed response header lines, by header name.",
		}, []string{"header"}),
		sanitizedM: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: promSanitizeSubsystem,
			Name:      "responses_total",
			Help:      "Total number of responses that carried connection-specific headers.",
		}),
		responseM: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Subsystem: promResponseSubsystem,
			Name:      "duration_seconds",
			Help:      "Duration of the proxied responses.",
		}, []string{"code", "method"}),
	}

	m.registry.MustRegister(m.removedM, m.sanitizedM, m.responseM)

	if o.EnableRuntimeMetrics {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return m
}

// IncRemoved counts removed response header lines for a header name.
func (m *Metrics) IncRemoved(header string, lines int) {
	m.removedM.WithLabelValues(http.CanonicalHeaderKey(header)).Add(float64(lines))
}

// IncSanitized counts a response that had headers removed.
func (m *Metrics) IncSanitized() {
	m.sanitizedM.Inc()
}

// MeasureResponse records the duration of a proxied response.
func (m *Metrics) MeasureResponse(code int, method string, start time.Time) {
	m.responseM.WithLabelValues(strconv.Itoa(code), method).Observe(time.Since(start).Seconds())
}

// Handler returns an http.Handler exposing the collected metrics in
// prometheus format, to be mounted on the support listener.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
