package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neighborly",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	searches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "neighborly",
			Name:      "catalog_searches_total",
			Help:      "Catalog filter evaluations.",
		},
	)

	ingests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neighborly",
			Name:      "listing_ingests_total",
			Help:      "Listing submissions by outcome.",
		},
		[]string{"outcome"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neighborly",
			Name:      "booking_requests_total",
			Help:      "Booking requests by final status.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, searches, ingests, bookings)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncSearch counts one catalog filter evaluation.
func IncSearch() {
	searches.Inc()
}

// IncIngest counts a submission outcome: "created", "validation_error",
// "upload_failure", "persist_failure" or "permission_denied".
func IncIngest(outcome string) {
	ingests.WithLabelValues(outcome).Inc()
}

// IncBooking counts a booking request resolution by status.
func IncBooking(status string) {
	bookings.WithLabelValues(status).Inc()
}
