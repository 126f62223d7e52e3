package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "production_tracking"

// ImportMetrics holds the service collectors on a private registry
type ImportMetrics struct {
	registry *prometheus.Registry

	imports  *prometheus.CounterVec
	entities *prometheus.CounterVec
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewImportMetrics() *ImportMetrics {
	m := &ImportMetrics{
		registry: prometheus.NewRegistry(),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Workbook imports by kind and status.",
		}, []string{"kind", "status"}),
		entities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_entities_total",
			Help:      "Entity mutation attempts by import kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time spent processing one workbook.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.imports, m.entities, m.duration, m.requests, m.latency,
	)
	return m
}

// ObserveImport records a finished import and its per-entity outcome counts
func (m *ImportMetrics) ObserveImport(kind, status string, elapsed time.Duration, updated, warnings, errors int) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(kind, status).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
	m.entities.WithLabelValues(kind, "updated").Add(float64(updated))
	m.entities.WithLabelValues(kind, "warning").Add(float64(warnings))
	m.entities.WithLabelValues(kind, "error").Add(float64(errors))
}

// ObserveRejected counts an import rejected before any mutation
func (m *ImportMetrics) ObserveRejected(kind string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(kind, "rejected").Inc()
}

// Middleware records request counts and latency per route template
func (m *ImportMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *ImportMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ImportMetrics) Registry() *prometheus.Registry {
	return m.registry
}
