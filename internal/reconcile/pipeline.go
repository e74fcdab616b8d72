// Package reconcile groups uniform item rows into product variants, matches
// orders against item sizes and derives the per-variant stock ledger and
// health statistics. Every function is pure over its inputs.
package reconcile

// Run executes a full reconciliation pass over one snapshot. The report is
// stamped with the snapshot time so identical snapshots yield identical reports.
func Run(s Snapshot, w *Window) Report {
	var window *Window
	if w != nil {
		copied := *w
		window = &copied
	}
	return Report{
		Groups:      GroupItems(s.Items),
		Rows:        ReconcileAll(s.Items, s.Orders, window),
		Health:      ComputeHealth(s.Items),
		Window:      window,
		GeneratedAt: s.TakenAt,
	}
}
