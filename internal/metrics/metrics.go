// Package metrics exposes Prometheus instrumentation for engine activity.
//
// Collectors are plain counters without per-queue labels: tenant and queue
// ids are unbounded opaque strings, so labelling by them would blow up
// cardinality. Hosts that need per-tenant breakdowns should derive them from
// logs. All collectors are safe for concurrent use.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// OrdersEnqueued counts successfully submitted orders.
	OrdersEnqueued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderq_orders_enqueued_total",
		Help: "Total number of orders submitted.",
	})

	// OrdersFinished counts Open -> Finished transitions.
	OrdersFinished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderq_orders_finished_total",
		Help: "Total number of orders marked finished.",
	})

	// OrdersReopened counts Finished -> Open transitions (undo finish).
	OrdersReopened = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderq_orders_reopened_total",
		Help: "Total number of finished orders reopened.",
	})

	// UndoActionsRun counts reversal closures executed from the undo stack.
	UndoActionsRun = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderq_undo_actions_run_total",
		Help: "Total number of undo actions popped and executed.",
	})

	// SweepRuns counts invocations of the retention sweep that actually ran
	// (re-entrant and rate-limited calls are not counted).
	SweepRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderq_sweep_runs_total",
		Help: "Total number of retention sweep executions.",
	})

	// SweepPurgedTenants counts tenants whose data was permanently removed.
	SweepPurgedTenants = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderq_sweep_purged_tenants_total",
		Help: "Total number of tenants purged by the retention sweep.",
	})
)

func init() {
	prometheus.MustRegister(
		OrdersEnqueued,
		OrdersFinished,
		OrdersReopened,
		UndoActionsRun,
		SweepRuns,
		SweepPurgedTenants,
	)
}
