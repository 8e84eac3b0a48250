// Package observability holds the Prometheus collectors of the service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	rolloverCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "repright",
		Subsystem: "session",
		Name:      "day_rollovers_total",
		Help:      "Number of calendar-day boundaries processed across all devices.",
	})

	streakBrokenCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "repright",
		Subsystem: "session",
		Name:      "streaks_broken_total",
		Help:      "Number of streaks reset by a missed scheduled day.",
	})

	workoutsCompletedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "repright",
		Subsystem: "session",
		Name:      "workouts_completed_total",
		Help:      "Number of days marked complete.",
	})

	aiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "repright",
		Subsystem: "coach",
		Name:      "requests_total",
		Help:      "AI service requests, labeled by operation and outcome.",
	}, []string{"operation", "outcome"})

	aiDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "repright",
		Subsystem: "coach",
		Name:      "request_duration_seconds",
		Help:      "Time spent waiting on the AI service.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(rolloverCounter, streakBrokenCounter, workoutsCompletedCounter, aiRequests, aiDuration)
}

// RecordRollover counts processed day boundaries and whether a streak broke.
func RecordRollover(boundaries int, streakBroken bool) {
	if boundaries > 0 {
		rolloverCounter.Add(float64(boundaries))
	}
	if streakBroken {
		streakBrokenCounter.Inc()
	}
}

func RecordWorkoutCompleted() {
	workoutsCompletedCounter.Inc()
}

// RecordAIRequest counts one AI call. err == nil is a success.
func RecordAIRequest(operation string, took time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	aiRequests.WithLabelValues(operation, outcome).Inc()
	aiDuration.WithLabelValues(operation).Observe(took.Seconds())
}
