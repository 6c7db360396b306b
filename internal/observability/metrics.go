package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	fetchRequestsTotal  *prometheus.CounterVec
	fetchLatencySeconds *prometheus.HistogramVec
	fetchErrorsTotal    *prometheus.CounterVec
	upstreamCallsTotal  *prometheus.CounterVec
	upstreamLatencySecs *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors for grade fetching.
func RegisterMetrics() {
	registerOnce.Do(func() {
		fetchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradefetch_requests_total",
			Help: "Total number of grade fetch requests served.",
		}, []string{"method", "route", "status"})

		fetchLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gradefetch_latency_seconds",
			Help:    "End-to-end latency distribution for grade fetch requests.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"method", "route"})

		fetchErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradefetch_errors_total",
			Help: "Total number of error responses returned by grade endpoints.",
		}, []string{"method", "route", "status"})

		upstreamCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradefetch_upstream_calls_total",
			Help: "Outbound calls to external auth and grader endpoints.",
		}, []string{"target", "outcome"})

		upstreamLatencySecs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gradefetch_upstream_latency_seconds",
			Help:    "Latency distribution of outbound auth and grader calls.",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 25.0},
		}, []string{"target"})

		prometheus.MustRegister(
			fetchRequestsTotal,
			fetchLatencySeconds,
			fetchErrorsTotal,
			upstreamCallsTotal,
			upstreamLatencySecs,
		)
	})
}

// FetchRequests exposes the counter for grade fetch requests.
func FetchRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return fetchRequestsTotal
}

// FetchLatency exposes the latency histogram for grade fetch requests.
func FetchLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return fetchLatencySeconds
}

// FetchErrors exposes the counter for grade fetch error responses.
func FetchErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return fetchErrorsTotal
}

// UpstreamCalls exposes the counter for outbound auth/grader calls.
func UpstreamCalls() *prometheus.CounterVec {
	RegisterMetrics()
	return upstreamCallsTotal
}

// UpstreamLatency exposes the latency histogram for outbound calls.
func UpstreamLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return upstreamLatencySecs
}
