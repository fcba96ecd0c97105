package table

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts service activity. Collectors are created eagerly and work
// whether or not they are registered, so tests can pass a nil registerer.
type Metrics struct {
	Actions      *prometheus.CounterVec
	Conflicts    prometheus.Counter
	Timeouts     prometheus.Counter
	HandsDealt   prometheus.Counter
	HandsSettled prometheus.Counter
}

// NewMetrics builds the collector set and registers it when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "holdemd",
			Subsystem: "table",
			Name:      "actions_total",
			Help:      "Betting actions applied, labeled by action type.",
		}, []string{"action"}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "holdemd",
			Subsystem: "table",
			Name:      "write_conflicts_total",
			Help:      "Optimistic hand writes that lost to a concurrent writer.",
		}),
		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "holdemd",
			Subsystem: "table",
			Name:      "turn_timeouts_total",
			Help:      "Turn clocks claimed expired.",
		}),
		HandsDealt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "holdemd",
			Subsystem: "table",
			Name:      "hands_dealt_total",
			Help:      "Hands dealt across all tables.",
		}),
		HandsSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "holdemd",
			Subsystem: "table",
			Name:      "hands_settled_total",
			Help:      "Completed hands whose stacks were written back.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Actions, m.Conflicts, m.Timeouts, m.HandsDealt, m.HandsSettled)
	}
	return m
}
