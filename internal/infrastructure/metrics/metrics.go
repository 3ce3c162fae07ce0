package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics the usecases and workers record.
// HTTP request metrics live in the adapter middleware, not here.
type Metrics struct {
	// Ledger metrics
	BalancesCreated  *prometheus.CounterVec
	CascadeRuns      prometheus.Counter
	CascadeDuration  prometheus.Histogram
	CascadeRecompute prometheus.Histogram

	// Time-off metrics
	TimeOffsCreated  prometheus.Counter
	TimeOffsApproved prometheus.Counter
	TimeOffsDeclined prometheus.Counter

	// Assignment metrics
	AssignmentsCreated prometheus.Counter
	AssignmentsRemoved prometheus.Counter

	// Contract-end metrics
	ContractEndsApplied prometheus.Counter

	// Worker metrics
	JobsProcessed *prometheus.CounterVec
	JobDuration   prometheus.Histogram
	QueueDepth    prometheus.Gauge

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Ledger metrics
		BalancesCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_balances_created_total",
				Help: "Total number of balance entries created by type",
			},
			[]string{"entry_type"},
		),
		CascadeRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_cascade_runs_total",
			Help: "Total number of recompute cascades executed",
		}),
		CascadeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaveledger_cascade_duration_seconds",
			Help:    "Duration of recompute cascades",
			Buckets: prometheus.DefBuckets,
		}),
		CascadeRecompute: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaveledger_cascade_entries_recomputed",
			Help:    "Number of entries recomputed per cascade",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
		}),

		// Time-off metrics
		TimeOffsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_time_offs_created_total",
			Help: "Total number of time-off requests created",
		}),
		TimeOffsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_time_offs_approved_total",
			Help: "Total number of time-off requests approved",
		}),
		TimeOffsDeclined: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_time_offs_declined_total",
			Help: "Total number of time-off requests declined",
		}),

		// Assignment metrics
		AssignmentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_assignments_created_total",
			Help: "Total number of policy assignments created",
		}),
		AssignmentsRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_assignments_removed_total",
			Help: "Total number of policy assignments removed",
		}),

		// Contract-end metrics
		ContractEndsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_contract_ends_applied_total",
			Help: "Total number of contract ends applied",
		}),

		// Worker metrics
		JobsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_jobs_processed_total",
				Help: "Total recompute jobs processed by outcome",
			},
			[]string{"status"},
		),
		JobDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaveledger_job_duration_seconds",
			Help:    "Recompute job duration",
			Buckets: prometheus.DefBuckets,
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "leaveledger_queue_depth",
			Help: "Pending recompute jobs",
		}),

		// Outbox metrics
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
	}
}
