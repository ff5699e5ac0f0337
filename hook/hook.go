// Package hook defines the extension system for airfair schedulers.
// Extensions are notified of lifecycle events (entity scheduled, queue
// selected, catch-up, etc.) and can react to them — logging, metrics,
// debugging.
//
// Each lifecycle event is a separate interface so extensions opt in only
// to the events they care about.
package hook

import (
	"time"

	"github.com/xraph/airfair/id"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// EntityRef identifies the fairness entity an event concerns without
// exposing scheduler internals to extensions.
type EntityRef struct {
	// Station is the owning station's identifier.
	Station id.StationID

	// TrafficClass is the traffic class the entity serves within its
	// access category.
	TrafficClass uint8
}

// ──────────────────────────────────────────────────
// Schedule membership events
// ──────────────────────────────────────────────────

// EntityScheduled is called after an entity is inserted into the active
// schedule.
type EntityScheduled interface {
	OnEntityScheduled(ref EntityRef) error
}

// EntityUnscheduled is called after an entity is removed from the active
// schedule.
type EntityUnscheduled interface {
	OnEntityUnscheduled(ref EntityRef) error
}

// ──────────────────────────────────────────────────
// Selection and accounting events
// ──────────────────────────────────────────────────

// QueueSelected is called when the selection engine hands out a lease.
// slot is the index of the sibling queue chosen by the round-robin cursor.
type QueueSelected interface {
	OnQueueSelected(ref EntityRef, slot int) error
}

// CatchUp is called when the global virtual clock is advanced. from and
// to are virtual-time values; their unit is internal but the delta is
// proportional to skipped fair-share airtime.
type CatchUp interface {
	OnCatchUp(from, to uint64) error
}

// WeightUpdated is called after an entity's fairness weight changes.
type WeightUpdated interface {
	OnWeightUpdated(ref EntityRef, oldWeight, newWeight uint32) error
}

// AirtimeReported is called after confirmed airtime is charged to an
// entity's accounting clock.
type AirtimeReported interface {
	OnAirtimeReported(ref EntityRef, tx, rx time.Duration) error
}
