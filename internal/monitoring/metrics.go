package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	admissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_admissions_total",
			Help: "Committed registrations by admission outcome",
		},
		[]string{"outcome"},
	)

	submissionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_submission_failures_total",
			Help: "Rejected or failed registration submissions by reason",
		},
		[]string{"reason"},
	)

	submitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "registration_submit_duration_seconds",
			Help:    "Duration of the registration unit of work",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	cancellations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_cancellations_total",
			Help: "Cancelled registrations by status before cancellation",
		},
		[]string{"prior_status"},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_check_ins_total",
			Help: "Successful check-ins by credential kind",
		},
		[]string{"kind"},
	)

	sideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_side_effect_failures_total",
			Help: "Side effects that failed after a registration committed",
		},
		[]string{"effect"},
	)

	degradedArtifacts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_artifact_render_failures_total",
			Help: "Notification attachments omitted because rendering failed",
		},
		[]string{"artifact"},
	)

	dispatchDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_dispatch_dropped_total",
			Help: "Side-effect jobs that could not be scheduled",
		},
		[]string{"reason"},
	)

	dispatchQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "registration_dispatch_queue_depth",
			Help: "Side-effect jobs waiting for an in-process worker",
		},
	)
)

func TrackAdmission(outcome string) {
	admissions.WithLabelValues(outcome).Inc()
}

func TrackSubmissionFailure(reason string) {
	submissionFailures.WithLabelValues(reason).Inc()
}

func ObserveSubmit(d time.Duration) {
	submitDuration.Observe(d.Seconds())
}

func TrackCancellation(priorStatus string) {
	cancellations.WithLabelValues(priorStatus).Inc()
}

func TrackCheckIn(kind string) {
	checkIns.WithLabelValues(kind).Inc()
}

func TrackSideEffectFailure(effect string) {
	sideEffectFailures.WithLabelValues(effect).Inc()
}

func TrackArtifactFailure(artifact string) {
	degradedArtifacts.WithLabelValues(artifact).Inc()
}

func TrackDispatchDropped(reason string) {
	dispatchDropped.WithLabelValues(reason).Inc()
}

func SetDispatchQueueDepth(n int) {
	dispatchQueueDepth.Set(float64(n))
}
