package metrics

import (
    "sync"
    "time"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    EndpointLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "creditech",
            Subsystem: "api",
            Name:      "endpoint_latency_seconds",
            Help:      "Latency of analytics endpoints",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"endpoint"},
    )

    EndpointErrors = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "creditech",
            Subsystem: "api",
            Name:      "endpoint_errors_total",
            Help:      "Errors by analytics endpoint",
        },
        []string{"endpoint"},
    )

    RateLimited = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "creditech",
            Subsystem: "api",
            Name:      "rate_limited_total",
            Help:      "Requests rejected by the rate limiter",
        },
        []string{"endpoint"},
    )
)

// Register adds the endpoint collectors to the default registry once.
func Register() {
    once.Do(func() {
        prometheus.MustRegister(EndpointLatency, EndpointErrors, RateLimited)
    })
}

// Observe records the latency since start and counts failed calls.
func Observe(endpoint string, start time.Time, failed bool) {
    EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
    if failed {
        EndpointErrors.WithLabelValues(endpoint).Inc()
    }
}
