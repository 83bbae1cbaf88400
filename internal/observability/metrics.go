package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bailanysta_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostsCreatedTotal counts posts by kind (original or repost).
	PostsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bailanysta_posts_created_total",
		Help: "Total number of posts created",
	}, []string{"kind"})

	// SignupsTotal counts completed account registrations.
	SignupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bailanysta_signups_total",
		Help: "Total number of accounts created",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
