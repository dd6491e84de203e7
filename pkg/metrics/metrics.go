package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portfolio"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Number of handled HTTP requests by method, route and status."},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency by method and route.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
	RecordsInserted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "records_inserted_total", Help: "Number of records inserted by collection."},
		[]string{"collection"},
	)
	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "validation_failures_total", Help: "Number of rejected payloads by schema."},
		[]string{"schema"},
	)
	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "store_errors_total", Help: "Number of failed store operations by operation."},
		[]string{"op"},
	)
	MediaUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "media_uploads_total", Help: "Number of media uploads by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
	reg.MustRegister(RecordsInserted)
	reg.MustRegister(ValidationFailures)
	reg.MustRegister(StoreErrors)
	reg.MustRegister(MediaUploads)
}
