package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cracker_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cracker_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ProgressUpserts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cracker_progress_upserts_total",
		Help: "Progress entries written.",
	})

	LeaderboardRecomputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cracker_leaderboard_recomputations_total",
		Help: "Leaderboard recomputations by result.",
	}, []string{"result"})

	DBRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cracker_db_retries_total",
		Help: "Database operations retried after a transient failure.",
	})
)
