package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "roadside"

var (
	HelpRequestEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "help_request_events_total", Help: "Help request lifecycle events"},
		[]string{"type"},
	)

	MechanicsOnline     = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "mechanics_online", Help: "Mechanics currently available"})
	RegisterRateLimited = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "register_rate_limited_total", Help: "Registrations refused by the rate limit"})
	SMSFailures         = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "sms_failures_total", Help: "SMS notifications that failed to send"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
