// Package metrics exposes Prometheus instrumentation for the scrape
// pipeline and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_http_requests_total",
			Help: "HTTP requests served, by method, path and status code.",
		},
		[]string{"method", "path", "code"},
	)

	// JobsExecuted counts finished scrape jobs by outcome.
	JobsExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_jobs_executed_total",
			Help: "Scrape jobs executed, by outcome.",
		},
		[]string{"outcome"},
	)

	// ListingsScraped counts successfully extracted and persisted listings.
	ListingsScraped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscout_listings_scraped_total",
			Help: "Listings successfully extracted.",
		},
	)

	// ListingFailures counts per-listing extraction failures that were
	// skipped.
	ListingFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscout_listing_failures_total",
			Help: "Listings skipped after an extraction failure.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequests, JobsExecuted, ListingsScraped, ListingFailures)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware records a request counter for every served request.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
	})
}
