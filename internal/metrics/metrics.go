package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the service's own registry; collectors are added by Register.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)

	// Resolutions counts resolver outcomes: book, location, unresolved, error.
	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "address_resolutions_total", Help: "Address resolutions by outcome."},
		[]string{"outcome"},
	)
	// ImportRows counts imported sheet rows by template and status (ok, failed).
	ImportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "import_rows_total", Help: "Imported sheet rows by template and status."},
		[]string{"template", "status"},
	)
	// LookupWait tracks time spent waiting on the directory rate limiter.
	LookupWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "directory_rate_wait_seconds", Help: "Time spent waiting for directory rate limit.", Buckets: []float64{.001, .01, .05, .1, .5, 1, 5}},
	)
)

var regOnce sync.Once

// Register adds all collectors plus Go/process collectors to Registry.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests, HTTPDuration, Resolutions, ImportRows, LookupWait)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
