package experiment

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AssignmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "experiment_assignments_total",
			Help: "Sessions assigned to an experiment arm.",
		},
		[]string{"experiment_id", "variant"},
	)

	ParticipantsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "experiment_participants_total",
			Help: "Outcomes recorded per experiment arm.",
		},
		[]string{"experiment_id", "variant"},
	)
)

func init() {
	prometheus.MustRegister(AssignmentsTotal, ParticipantsTotal)
}
