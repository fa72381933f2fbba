// Package monitor tracks a user's proximity to an unbounded set of circular
// geofence regions on platforms whose native region monitoring is capped at a
// small fixed number of slots, or absent entirely.
//
// Two strategies are implemented. In native mode a WorkingSetSelector
// continuously re-ranks candidate regions by proximity to the last position
// fix and reconciles the capacity-limited armed set against a
// NativeRegionMonitor. In software mode a ContainmentTracker derives
// enter/exit transitions directly from the position sample stream, with no
// capacity limit.
//
// The Coordinator owns all state and is driven entirely by external
// callbacks: position updates, authorization changes, and native monitor
// events. It never blocks and never polls.
package monitor
