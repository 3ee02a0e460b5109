package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds the Prometheus collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authorization metrics
	DecisionsTotal *prometheus.CounterVec

	// Audit metrics
	AuditEventsTotal    prometheus.Counter
	JournalShippedTotal *prometheus.CounterVec
}

// New creates and registers all collectors on registry. A nil registry gets
// a fresh one with the Go and process collectors attached.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskguard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskguard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskguard_authz_decisions_total",
				Help: "Authorization decisions by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		AuditEventsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "taskguard_audit_events_total",
				Help: "Total number of recorded audit events",
			},
		),
		JournalShippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskguard_audit_journal_ship_total",
				Help: "Journaled audit events by shipping outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DecisionsTotal,
		m.AuditEventsTotal,
		m.JournalShippedTotal,
	)
	return m
}

// ObserveDecision counts one authorization decision.
func (m *Metrics) ObserveDecision(operation string, allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.DecisionsTotal.WithLabelValues(operation, outcome).Inc()
}

// Inc counts one recorded audit event.
func (m *Metrics) Inc() {
	m.AuditEventsTotal.Inc()
}

func (m *Metrics) ObserveShipped(outcome string) {
	m.JournalShippedTotal.WithLabelValues(outcome).Inc()
}

// Instrument wraps next with request count and latency collection. The
// route pattern is used as the path label to keep cardinality bounded.
func (m *Metrics) Instrument(path string, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		method := string(ctx.Method())
		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(ctx.Response.StatusCode())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
