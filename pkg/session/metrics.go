package session

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for the client pipeline. Registered in the default
// registry; host applications that expose a /metrics endpoint get request
// rates, latency, refresh outcomes and session terminations for free.

var (
	// clientRequestsTotal counts every request that left the pipeline,
	// by method, path and final status ("0" for network failures).
	//
	// Labels: method, path, status
	// Type: Counter
	clientRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carelink_client_requests_total",
			Help: "Total number of API client requests",
		},
		[]string{"method", "path", "status"},
	)

	// clientRequestDuration measures wall time per request for latency
	// analysis, including failed attempts.
	//
	// Labels: method, path
	// Type: Histogram
	clientRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carelink_client_request_duration_seconds",
			Help:    "API client request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// clientTokenRefreshTotal counts refresh attempts by result. A rising
	// "failed" series means sessions are being force-terminated.
	//
	// Labels: result (success, failed)
	// Type: Counter
	clientTokenRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carelink_client_token_refresh_total",
			Help: "Total number of token refresh attempts",
		},
		[]string{"result"},
	)

	// clientSessionTerminations counts full session teardowns (store
	// cleared, session-expired callback fired).
	//
	// Type: Counter
	clientSessionTerminations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "carelink_client_session_terminations_total",
			Help: "Total number of terminated client sessions",
		},
	)
)

func init() {
	prometheus.MustRegister(clientRequestsTotal)
	prometheus.MustRegister(clientRequestDuration)
	prometheus.MustRegister(clientTokenRefreshTotal)
	prometheus.MustRegister(clientSessionTerminations)
}

// recordRequest records one settled request. status 0 means no HTTP
// response was received.
func recordRequest(method, path string, status int, duration time.Duration) {
	clientRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	clientRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// recordRefresh records one refresh attempt outcome.
func recordRefresh(result string) {
	clientTokenRefreshTotal.WithLabelValues(result).Inc()
}

// recordTermination records one full session teardown.
func recordTermination() {
	clientSessionTerminations.Inc()
}
