// Package hook defines the extension system for airfair schedulers.
//
// Extensions are notified of scheduler lifecycle events and can react to
// them — recording metrics, mirroring state into dashboards, debugging
// fairness regressions. Each lifecycle event is a separate interface so
// extensions opt in only to the events they care about.
//
// Hooks run synchronously on the transmit path, after the scheduler has
// released its per-category lock. Implementations must be fast and must
// not call back into the scheduler.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	// Opt in to specific events by implementing their interfaces.
//	func (e *MyExtension) OnQueueSelected(ref hook.EntityRef, slot int) error {
//	    log.Printf("station %s slot %d selected", ref.Station, slot)
//	    return nil
//	}
//
// # Events
//
//   - [EntityScheduled] — an entity entered the active schedule
//   - [EntityUnscheduled] — an entity left the active schedule
//   - [QueueSelected] — the selection engine handed out a queue lease
//   - [CatchUp] — the global virtual clock jumped forward
//   - [WeightUpdated] — an entity's fairness weight was reconfigured
//   - [AirtimeReported] — confirmed airtime was charged to an entity
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding interface.
package hook
