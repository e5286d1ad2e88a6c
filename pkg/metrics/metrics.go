package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PostOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blogdraft", Name: "post_operations_total", Help: "Repository operations by operation and result."},
		[]string{"op", "result"},
	)
	Exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blogdraft", Name: "exports_total", Help: "Document exports by format and result."},
		[]string{"format", "result"},
	)
	ExportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "blogdraft", Name: "export_duration_seconds", Help: "Time spent encoding an export.", Buckets: prometheus.DefBuckets},
		[]string{"format"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blogdraft", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blogdraft", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(PostOperations)
	reg.MustRegister(Exports)
	reg.MustRegister(ExportDuration)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
