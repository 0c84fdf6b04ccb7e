package sim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispsim_steps_total",
		Help: "Total chunk steps taken",
	})

	stepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispsim_step_duration_seconds",
		Help:    "Wall time of one chunk step",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10), // 1µs to ~260ms
	})

	advisoriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispsim_stability_advisories_total",
		Help: "Terms flagged by the advisory stability check, by kind",
	}, []string{"kind"})

	runErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispsim_run_errors_total",
		Help: "Runs that stopped with an error, by cause",
	}, []string{"cause"})

	ensembleMembers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispsim_ensemble_members_total",
		Help: "Ensemble members run to completion",
	})
)
