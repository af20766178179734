package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the ranked-matches HTTP handler
	MatchRequestLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_request_latency_seconds",
		Help:    "Latency of the ranked matches handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of ranked-match requests served
	MatchRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_requests_total",
		Help: "Total number of ranked match requests",
	})

	// Total number of outcome submissions received
	OutcomeRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_outcome_requests_total",
		Help: "Total number of outcome submissions",
	})
)

func Init() {
	prometheus.MustRegister(
		MatchRequestLatency,
		MatchRequests,
		OutcomeRequests,
	)
}
