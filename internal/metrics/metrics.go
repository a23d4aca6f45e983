// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gantry",
		Name:      "runs_created_total",
		Help:      "Pipeline runs accepted.",
	})

	JobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gantry",
		Name:      "jobs_enqueued_total",
		Help:      "Jobs handed to the queue.",
	})

	JobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gantry",
		Name:      "jobs_finished_total",
		Help:      "Jobs that reached a final status.",
	}, []string{"status"})

	EventErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gantry",
		Name:      "event_errors_total",
		Help:      "Errors raised handling database change events.",
	})

	ServicesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gantry",
		Name:      "services_started_total",
		Help:      "Topology services that became healthy.",
	})

	ServicesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gantry",
		Name:      "services_failed_total",
		Help:      "Topology services that failed to start or went unhealthy.",
	})
)
