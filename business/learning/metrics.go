package learning

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ChoiceEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learning_choice_events_total",
			Help: "Count of processed customer choices by segment and choice type.",
		},
		[]string{"segment", "choice_type"},
	)
)

func init() {
	prometheus.MustRegister(ChoiceEventsTotal)
}
