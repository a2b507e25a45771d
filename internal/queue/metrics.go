package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ezanim_queue_jobs_enqueued_total",
		Help: "Jobs accepted by a queue.",
	}, []string{"queue"})

	metricCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ezanim_queue_jobs_completed_total",
		Help: "Jobs that finished successfully.",
	}, []string{"queue"})

	metricFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ezanim_queue_jobs_failed_total",
		Help: "Jobs whose handler returned an error.",
	}, []string{"queue"})

	metricInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ezanim_queue_jobs_in_flight",
		Help: "Jobs currently being processed.",
	}, []string{"queue"})
)
