// Package metrics declares the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GuardDecisions counts route guard outcomes by decision
	GuardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collaboratex_guard_decisions_total",
		Help: "Route guard decisions by outcome",
	}, []string{"decision"})

	// SessionEvents counts auth state changes published by the session hub
	SessionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collaboratex_session_events_total",
		Help: "Auth state change events by type",
	}, []string{"event"})

	// SessionResolveFailures counts resolutions that hit an unreachable identity service
	SessionResolveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collaboratex_session_resolve_failures_total",
		Help: "Session resolutions that failed because the identity service was unavailable",
	})

	// AnonRateLimited counts requests rejected by the anonymous link limiter
	AnonRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collaboratex_anon_rate_limited_total",
		Help: "Anonymous link requests rejected by the per-IP rate limiter",
	})

	// HTTPRequests counts requests by route pattern and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collaboratex_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code",
	}, []string{"method", "route", "status"})

	// HTTPDuration tracks request latency by route pattern
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "collaboratex_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"route"})
)
