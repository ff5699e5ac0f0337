package airfair

import (
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/airfair/hook"
	"github.com/xraph/airfair/id"
	"github.com/xraph/airfair/skiplist"
)

// Scheduler is a fairness-aware transmission scheduler for one access
// category. Different categories use independent instances and never
// coordinate.
//
// All operations are safe for concurrent use. The per-instance mutex is
// held only for bounded O(log n) critical sections with no blocking call
// inside; hook events fire after it is released.
type Scheduler struct {
	cfg    Config
	logger *slog.Logger
	hooks  *hook.Registry
	clock  func() time.Time

	mu sync.Mutex

	// list orders active entities by their lookahead virtual time.
	list *skiplist.List[*Entity]

	// entities holds every registered entity, scheduled or not, in
	// registration order.
	entities []*Entity

	// cursor remembers the last entity handed out by Next within the
	// current pass; when the walk comes back around to it, everyone has
	// had a turn and Next yields nothing until the next BeginPass.
	cursor *Entity

	// vtGlobal is the category's virtual clock. It advances only through
	// catch-up, never by itself.
	vtGlobal uint64

	weightSum        uint64
	lastActivity     time.Time // last successful dequeue
	lastCatchUp      time.Time
	lastWeightUpdate time.Time

	// outstanding counts leases handed out and not yet consumed.
	outstanding int

	// pending queues hook emissions while the mutex is held.
	pending []func()
}

// New creates a Scheduler with the given options.
func New(opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		cfg:    DefaultConfig(),
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if err := s.cfg.validate(); err != nil {
		return nil, err
	}
	if s.hooks == nil {
		s.hooks = hook.NewRegistry(s.logger)
	}
	s.list = skiplist.New(compareEntities)
	return s, nil
}

// compareEntities orders entities by their lookahead virtual time. Equal
// keys are tie-broken by node identity inside the skip list.
func compareEntities(a, b *Entity) int {
	switch {
	case a.vtCur < b.vtCur:
		return -1
	case a.vtCur > b.vtCur:
		return 1
	default:
		return 0
	}
}

// Name returns the access-category label.
func (s *Scheduler) Name() string { return s.cfg.Name }

// Logger returns the scheduler's logger.
func (s *Scheduler) Logger() *slog.Logger { return s.logger }

// Hooks returns the extension registry receiving lifecycle events.
func (s *Scheduler) Hooks() *hook.Registry { return s.hooks }

// Config returns a copy of the scheduler's configuration.
func (s *Scheduler) Config() Config { return s.cfg }

// Len returns the number of entities currently in the schedule.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Len()
}

// GlobalVirtualTime returns the category's virtual clock.
func (s *Scheduler) GlobalVirtualTime() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vtGlobal
}

// WeightSum returns the aggregate weight of entities active within the
// trailing window. It reflects the last lazy recomputation.
func (s *Scheduler) WeightSum() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weightSum
}

// Entities returns all registered entities in registration order.
func (s *Scheduler) Entities() []*Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// OutstandingLeases returns the number of leases produced by Next that
// have not yet been consumed by Return or Drop.
func (s *Scheduler) OutstandingLeases() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outstanding
}

// NewEntity registers a fairness entity for the given station and traffic
// class, with the default weight and a zero accounting clock.
func (s *Scheduler) NewEntity(station id.StationID, class uint8) *Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &Entity{
		s:          s,
		station:    station,
		class:      class,
		weight:     s.cfg.DefaultWeight,
		reciprocal: weightReciprocal(s.cfg.DefaultWeight),
	}
	e.node = s.list.NewNode(e)
	s.entities = append(s.entities, e)
	return e
}

// RemoveEntity detaches an entity when its station goes away. The entity
// is unscheduled, dropped from the activity bookkeeping, and refuses
// further queue registrations.
func (s *Scheduler) RemoveEntity(e *Entity) {
	s.mu.Lock()
	defer s.unlockAndEmit()
	if e.s != s {
		s.assert("remove of foreign entity", e)
		return
	}
	if e.detached {
		return
	}
	s.unscheduleEntity(e)
	e.detached = true
	e.active = false
	for i, x := range s.entities {
		if x == e {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			break
		}
	}
	s.recomputeWeights(s.clock())
}

// UpdateWeight reconfigures an entity's fairness weight. The accounting
// clock is untouched, so virtual time stays monotone across weight
// changes; only the rate of future advancement changes.
func (s *Scheduler) UpdateWeight(e *Entity, weight uint32) error {
	if weight == 0 {
		return ErrInvalidWeight
	}
	s.mu.Lock()
	defer s.unlockAndEmit()
	if e.s != s {
		s.assert("weight update for foreign entity", e)
		return nil
	}
	old := e.weight
	e.weight = weight
	e.reciprocal = weightReciprocal(weight)
	now := s.clock()
	s.lastWeightUpdate = now
	s.recomputeWeights(now)
	if e.node.InList() {
		s.resort(e)
	}
	ref := e.ref()
	s.emit(func() { s.hooks.EmitWeightUpdated(ref, old, weight) })
	return nil
}

// ScheduleQueue puts a queue's entity into the schedule, typically on the
// first enqueue after idle. An entity that is already scheduled is left
// where it is. A previously inactive entity has its accounting clock
// caught up to the global virtual clock first, so stale idle time does
// not turn into a service monopoly.
func (s *Scheduler) ScheduleQueue(tq *TxQueue) {
	s.mu.Lock()
	defer s.unlockAndEmit()
	e := tq.entity
	if e.s != s {
		s.assert("schedule of foreign queue", e)
		return
	}
	if e.detached || e.node.InList() {
		return
	}
	now := s.clock()
	if !s.isActive(e, now) && e.vt < s.vtGlobal {
		e.vt = s.vtGlobal
	}
	s.markActive(e, now)
	e.refreshLookahead()
	s.list.Insert(e.node)
	ref := e.ref()
	s.emit(func() { s.hooks.EmitEntityScheduled(ref) })
}

// UnscheduleQueue withdraws a queue, typically on purge. Its force flag is
// cleared; the entity leaves the schedule once no sibling remains
// eligible.
func (s *Scheduler) UnscheduleQueue(tq *TxQueue) {
	s.mu.Lock()
	defer s.unlockAndEmit()
	e := tq.entity
	if e.s != s {
		s.assert("unschedule of foreign queue", e)
		return
	}
	tq.forceActive = false
	for _, sib := range e.queues {
		if sib.forceActive || sib.backing.HasData() {
			return
		}
	}
	s.unscheduleEntity(e)
}

// MayTransmit is the bypass eligibility test for opportunistic
// out-of-turn sends: true while the entity's accounting clock is within
// the global virtual clock plus a slack proportional to the low AQL
// threshold scaled by its reciprocal. The slack bounds how far a bypassed
// entity can run ahead; losing the minimum race therefore never turns
// into starvation.
func (s *Scheduler) MayTransmit(tq *TxQueue) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := tq.entity
	if e.s != s || e.detached {
		return false
	}
	slack := airtimeUnits(s.cfg.AQLThresholdLow, e.reciprocal)
	return e.vt <= satAdd(s.vtGlobal, slack)
}

// ──────────────────────────────────────────────────
// Internal engine (lock held)
// ──────────────────────────────────────────────────

// admissionOK is the AQL admission test: outstanding estimated airtime
// must stay under the high-water budget.
func (s *Scheduler) admissionOK(e *Entity) bool {
	if !s.cfg.AQLSupported {
		return true
	}
	return time.Duration(e.pendingMicros())*time.Microsecond < s.cfg.AQLThresholdHigh
}

// isActive reports whether the entity is scheduled or has transmitted or
// received within the trailing window.
func (s *Scheduler) isActive(e *Entity, now time.Time) bool {
	if e.node.InList() {
		return true
	}
	return !e.lastActive.IsZero() && now.Sub(e.lastActive) <= s.cfg.ActiveWindow
}

// markActive refreshes the entity's activity stamp. A transition from
// inactive triggers the lazy weight-sum recomputation; steady-state
// activity does not.
func (s *Scheduler) markActive(e *Entity, now time.Time) {
	e.lastActive = now
	if !e.active {
		e.active = true
		s.recomputeWeights(now)
	}
}

// recomputeWeights rebuilds the weight sum over currently active
// entities, expiring those whose window has lapsed.
func (s *Scheduler) recomputeWeights(now time.Time) {
	var sum uint64
	for _, e := range s.entities {
		e.active = s.isActive(e, now)
		if e.active {
			sum += uint64(e.weight)
		}
	}
	s.weightSum = sum
}

// resort re-keys a scheduled entity: delete then reinsert, cheap because
// the skip list never rebalances.
func (s *Scheduler) resort(e *Entity) {
	s.list.Remove(e.node)
	e.refreshLookahead()
	s.list.Insert(e.node)
}

// unscheduleEntity removes the entity from the schedule and, if it was
// the remembered cursor, clears the cursor so the next selection restarts
// from the new minimum.
func (s *Scheduler) unscheduleEntity(e *Entity) {
	if s.cursor == e {
		s.cursor = nil
	}
	if !e.node.InList() {
		return
	}
	s.list.Remove(e.node)
	ref := e.ref()
	s.emit(func() { s.hooks.EmitEntityUnscheduled(ref) })
}

// retireEntity takes an entity out of the schedule from a lease or a
// selection pop, where the node is usually already unlinked; the
// membership event is emitted either way so scheduled/unscheduled events
// stay paired. Lock held.
func (s *Scheduler) retireEntity(e *Entity) {
	if e.node.InList() {
		// Re-scheduled behind our back during the burst.
		s.unscheduleEntity(e)
		return
	}
	if s.cursor == e {
		s.cursor = nil
	}
	ref := e.ref()
	s.emit(func() { s.hooks.EmitEntityUnscheduled(ref) })
}

// maybeCatchUp advances the global virtual clock after a gap with no
// dequeue: it moves to just behind the minimum key among now-active
// entities, so a long-idle entity's stale clock cannot buy it the medium
// indefinitely, while genuine new arrivals still go first. Runs once per
// gap.
func (s *Scheduler) maybeCatchUp(now time.Time) {
	if s.lastActivity.IsZero() || now.Sub(s.lastActivity) <= s.cfg.ActiveWindow {
		return
	}
	if s.lastCatchUp.After(s.lastActivity) {
		return
	}
	front := s.list.Front()
	if front == nil {
		// Nothing to examine; the gap stays armed for the first
		// populated call.
		return
	}
	s.lastCatchUp = now
	if min := front.Item().vtCur; min > s.vtGlobal+1 {
		s.catchUpTo(min - 1)
	}
}

// catchUpTo raises the global virtual clock to target.
func (s *Scheduler) catchUpTo(target uint64) {
	if target <= s.vtGlobal {
		return
	}
	from := s.vtGlobal
	s.vtGlobal = target
	s.emit(func() { s.hooks.EmitCatchUp(from, target) })
}

// assert logs a contract violation. Given correct integration these never
// fire; the operation is aborted rather than surfaced as an error because
// the surrounding system has no representation for a corrupted scheduler.
func (s *Scheduler) assert(msg string, e *Entity) {
	attrs := []any{slog.String("category", s.cfg.Name)}
	if e != nil {
		attrs = append(attrs, slog.String("station", e.station.String()))
	}
	s.logger.Error("scheduler contract violation: "+msg, attrs...)
}

// emit queues a hook emission to run after the mutex is released.
func (s *Scheduler) emit(f func()) {
	s.pending = append(s.pending, f)
}

// unlockAndEmit releases the mutex and fires queued hook emissions, in
// order. Used via defer by every mutating operation.
func (s *Scheduler) unlockAndEmit() {
	emits := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, f := range emits {
		f()
	}
}
