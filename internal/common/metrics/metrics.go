// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_api_requests_total",
			Help: "Total number of API requests by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	APIRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_api_retries_total",
			Help: "Total number of retry attempts by status",
		},
		[]string{"status"},
	)

	UnauthorizedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "console_unauthorized_total",
			Help: "Total number of responses that triggered the unauthorized flow",
		},
	)

	UnauthorizedSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "console_unauthorized_suppressed_total",
			Help: "Unauthorized responses absorbed by the debounce window",
		},
	)

	LogoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "console_logouts_total",
			Help: "Number of forced logouts",
		},
	)

	TreeNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "console_tree_nodes",
			Help: "Node count of the last built tree",
		},
		[]string{"tree"},
	)

	TreeDuplicateIDs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_tree_duplicate_ids_total",
			Help: "Duplicate ids seen while building trees",
		},
		[]string{"tree"},
	)
)
