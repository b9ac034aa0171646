package ddns

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "ddns"

var runCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: metricsNamespace,
	Name:      "runs_total",
	Help:      "Counter of reconcile runs by outcome (updated, skipped, failed).",
}, []string{"outcome"})

var updateCount = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: metricsNamespace,
	Name:      "record_updates_total",
	Help:      "Counter of record upserts accepted by the provider.",
})

var lastRunTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: metricsNamespace,
	Name:      "last_run_timestamp_seconds",
	Help:      "Unix time of the last run by outcome.",
}, []string{"outcome"})

func observeRun(outcome string) {
	runCount.WithLabelValues(outcome).Inc()
	lastRunTimestamp.WithLabelValues(outcome).SetToCurrentTime()
	if outcome == outcomeUpdated {
		updateCount.Inc()
	}
}

const (
	outcomeUpdated = "updated"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)
