package matching

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MatchRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_runs_total",
			Help: "Count of matching runs by weight source.",
		},
		[]string{"weight_source"},
	)

	CandidatesScoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_scored_total",
			Help: "Total manufacturer candidates scored.",
		},
	)
)

func init() {
	prometheus.MustRegister(MatchRunsTotal, CandidatesScoredTotal)
}
