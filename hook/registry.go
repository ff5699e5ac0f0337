package hook

import (
	"log/slog"
	"time"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type entityScheduledEntry struct {
	name string
	hook EntityScheduled
}

type entityUnscheduledEntry struct {
	name string
	hook EntityUnscheduled
}

type queueSelectedEntry struct {
	name string
	hook QueueSelected
}

type catchUpEntry struct {
	name string
	hook CatchUp
}

type weightUpdatedEntry struct {
	name string
	hook WeightUpdated
}

type airtimeReportedEntry struct {
	name string
	hook AirtimeReported
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant event.
//
// Registration is not synchronized; register all extensions before
// handing the registry to a scheduler.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle event.
	entityScheduled   []entityScheduledEntry
	entityUnscheduled []entityUnscheduledEntry
	queueSelected     []queueSelectedEntry
	catchUp           []catchUpEntry
	weightUpdated     []weightUpdatedEntry
	airtimeReported   []airtimeReportedEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// event caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(EntityScheduled); ok {
		r.entityScheduled = append(r.entityScheduled, entityScheduledEntry{name, h})
	}
	if h, ok := e.(EntityUnscheduled); ok {
		r.entityUnscheduled = append(r.entityUnscheduled, entityUnscheduledEntry{name, h})
	}
	if h, ok := e.(QueueSelected); ok {
		r.queueSelected = append(r.queueSelected, queueSelectedEntry{name, h})
	}
	if h, ok := e.(CatchUp); ok {
		r.catchUp = append(r.catchUp, catchUpEntry{name, h})
	}
	if h, ok := e.(WeightUpdated); ok {
		r.weightUpdated = append(r.weightUpdated, weightUpdatedEntry{name, h})
	}
	if h, ok := e.(AirtimeReported); ok {
		r.airtimeReported = append(r.airtimeReported, airtimeReportedEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Event emitters
// ──────────────────────────────────────────────────

// EmitEntityScheduled notifies all extensions that implement EntityScheduled.
func (r *Registry) EmitEntityScheduled(ref EntityRef) {
	for _, e := range r.entityScheduled {
		if err := e.hook.OnEntityScheduled(ref); err != nil {
			r.logHookError("OnEntityScheduled", e.name, err)
		}
	}
}

// EmitEntityUnscheduled notifies all extensions that implement EntityUnscheduled.
func (r *Registry) EmitEntityUnscheduled(ref EntityRef) {
	for _, e := range r.entityUnscheduled {
		if err := e.hook.OnEntityUnscheduled(ref); err != nil {
			r.logHookError("OnEntityUnscheduled", e.name, err)
		}
	}
}

// EmitQueueSelected notifies all extensions that implement QueueSelected.
func (r *Registry) EmitQueueSelected(ref EntityRef, slot int) {
	for _, e := range r.queueSelected {
		if err := e.hook.OnQueueSelected(ref, slot); err != nil {
			r.logHookError("OnQueueSelected", e.name, err)
		}
	}
}

// EmitCatchUp notifies all extensions that implement CatchUp.
func (r *Registry) EmitCatchUp(from, to uint64) {
	for _, e := range r.catchUp {
		if err := e.hook.OnCatchUp(from, to); err != nil {
			r.logHookError("OnCatchUp", e.name, err)
		}
	}
}

// EmitWeightUpdated notifies all extensions that implement WeightUpdated.
func (r *Registry) EmitWeightUpdated(ref EntityRef, oldWeight, newWeight uint32) {
	for _, e := range r.weightUpdated {
		if err := e.hook.OnWeightUpdated(ref, oldWeight, newWeight); err != nil {
			r.logHookError("OnWeightUpdated", e.name, err)
		}
	}
}

// EmitAirtimeReported notifies all extensions that implement AirtimeReported.
func (r *Registry) EmitAirtimeReported(ref EntityRef, tx, rx time.Duration) {
	for _, e := range r.airtimeReported {
		if err := e.hook.OnAirtimeReported(ref, tx, rx); err != nil {
			r.logHookError("OnAirtimeReported", e.name, err)
		}
	}
}

// logHookError logs a hook failure. Extension errors never propagate to
// the scheduler; an extension that fails is a problem for its owner, not
// for frame scheduling.
func (r *Registry) logHookError(event, name string, err error) {
	r.logger.Error("extension hook failed",
		slog.String("event", event),
		slog.String("extension", name),
		slog.String("error", err.Error()),
	)
}
