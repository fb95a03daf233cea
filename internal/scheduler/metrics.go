package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadpulse_cycles_total",
		Help: "Number of completed observation cycles.",
	})
	recordsStoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadpulse_records_stored_total",
		Help: "Number of observation records appended to a dataset.",
	})
	providerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadpulse_provider_failures_total",
		Help: "Number of failed provider calls.",
	}, []string{"provider"})
	storeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadpulse_store_failures_total",
		Help: "Number of failed dataset appends.",
	})
)
