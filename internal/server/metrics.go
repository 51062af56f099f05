package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type serverMetrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	quoteFallbacks  prometheus.Counter
	resultsSaved    *prometheus.CounterVec
	liveSessions    prometheus.Gauge
}

func newServerMetrics() *serverMetrics {
	m := &serverMetrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speedtype_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "speedtype_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		quoteFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "speedtype_quote_fallbacks_total",
			Help: "Passages served from the built-in list because the quote source failed",
		}),
		resultsSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speedtype_results_total",
				Help: "Recorded typing results by outcome",
			},
			[]string{"outcome"},
		),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "speedtype_live_sessions",
			Help: "Open websocket practice sessions",
		}),
	}
	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.quoteFallbacks,
		m.resultsSaved,
		m.liveSessions,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *serverMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *serverMetrics) recordRequest(method, route string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *serverMetrics) recordResult(persisted bool, err error) {
	switch {
	case err != nil:
		m.resultsSaved.WithLabelValues("error").Inc()
	case persisted:
		m.resultsSaved.WithLabelValues("saved").Inc()
	default:
		m.resultsSaved.WithLabelValues("anonymous").Inc()
	}
}
