package airfair

import (
	"sync/atomic"
	"time"

	"github.com/xraph/airfair/hook"
	"github.com/xraph/airfair/id"
	"github.com/xraph/airfair/skiplist"
)

// Queue is the enqueue-side collaborator contract. The scheduler treats
// queues as opaque: it only ever asks whether data is waiting. Frame
// storage, the drop discipline, and dequeueing belong to the integration
// (package memqueue ships a reference implementation).
type Queue interface {
	// HasData reports whether at least one frame is queued.
	HasData() bool
}

// AirtimeEstimator is the optional half of the collaborator contract used
// by integrations with AQL support: estimate the medium-occupancy time of
// a frame of the given length, under or outside an aggregation session.
// The scheduler itself never calls it; the transmit path feeds the result
// to [Scheduler.Reserve].
type AirtimeEstimator interface {
	EstimateAirtime(frameLen int, aggregated bool) time.Duration
}

// Entity is the fairness-accounted unit: one per (station, traffic class)
// pairing, fanning out to up to Config.MaxQueuesPerEntity transmit queues.
// Entities are created with [Scheduler.NewEntity] and live until
// [Scheduler.RemoveEntity] when the station detaches.
//
// All fields except pendingAirtime are guarded by the owning scheduler's
// mutex.
type Entity struct {
	s       *Scheduler
	station id.StationID
	class   uint8

	weight     uint32
	reciprocal uint64

	// vt is the accounting clock: a monotone accumulator of this
	// entity's fair share of consumed airtime.
	vt uint64

	// vtCur is vt plus a lookahead for outstanding, not-yet-confirmed
	// airtime. It is the skip-list ordering key and is never persisted
	// back into vt.
	vtCur uint64

	txAirtime time.Duration
	rxAirtime time.Duration

	// pendingAirtime holds microseconds of estimated in-flight airtime.
	// It is mutated atomically on the per-frame path without taking the
	// scheduler lock, and read under the lock only when the ordering key
	// is recomputed; staleness between that read and the eventual
	// reinsertion is tolerated.
	pendingAirtime atomic.Int64

	queues []*TxQueue
	rr     int

	lastActive time.Time
	active     bool
	detached   bool

	node *skiplist.Node[*Entity]
}

// Station returns the owning station's identifier.
func (e *Entity) Station() id.StationID { return e.station }

// TrafficClass returns the traffic class this entity serves.
func (e *Entity) TrafficClass() uint8 { return e.class }

// Weight returns the entity's current fairness weight.
func (e *Entity) Weight() uint32 {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return e.weight
}

// VirtualTime returns the entity's accounting clock. The unit is internal;
// values are comparable across entities of the same scheduler.
func (e *Entity) VirtualTime() uint64 {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return e.vt
}

// AccountedAirtime returns the total confirmed transmit and receive
// airtime charged to this entity.
func (e *Entity) AccountedAirtime() (tx, rx time.Duration) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return e.txAirtime, e.rxAirtime
}

// PendingAirtime returns the estimated airtime currently in flight.
func (e *Entity) PendingAirtime() time.Duration {
	return time.Duration(e.pendingMicros()) * time.Microsecond
}

// Scheduled reports whether the entity is currently in the schedule.
func (e *Entity) Scheduled() bool {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return e.node.InList()
}

// QueueCount returns the number of sibling queues the entity fans out to.
func (e *Entity) QueueCount() int {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return len(e.queues)
}

// AddQueue attaches a backing queue and returns its transmit-queue handle.
// All scheduler operations on the queue go through the handle.
func (e *Entity) AddQueue(q Queue) (*TxQueue, error) {
	if q == nil {
		return nil, ErrNilQueue
	}
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if e.detached {
		return nil, ErrEntityDetached
	}
	if len(e.queues) >= e.s.cfg.MaxQueuesPerEntity {
		return nil, ErrQueueCapacity
	}
	tq := &TxQueue{entity: e, backing: q, slot: len(e.queues)}
	e.queues = append(e.queues, tq)
	return tq, nil
}

func (e *Entity) ref() hook.EntityRef {
	return hook.EntityRef{Station: e.station, TrafficClass: e.class}
}

// pendingMicros reads the AQL counter, clamping transient negatives that
// a completion racing ahead of its reservation can produce.
func (e *Entity) pendingMicros() int64 {
	if p := e.pendingAirtime.Load(); p > 0 {
		return p
	}
	return 0
}

// refreshLookahead recomputes the ordering key: vt plus the pending AQL
// budget scaled by the weight reciprocal. Lock held.
func (e *Entity) refreshLookahead() {
	e.vtCur = satAdd(e.vt, satMul(uint64(e.pendingMicros()), e.reciprocal))
}

// nextEligible advances the round-robin cursor over the sibling queues,
// skipping ineligible ones, and returns the queue for this turn plus its
// slot index, or (nil, -1) if no sibling is eligible. Each queue's force
// flag is consumed the first time the walk reaches it, whether or not the
// queue ends up selected. Lock held.
func (e *Entity) nextEligible() (*TxQueue, int) {
	n := len(e.queues)
	for i := 0; i < n; i++ {
		idx := e.rr + i
		if idx >= n {
			idx -= n
		}
		tq := e.queues[idx]
		force := tq.forceActive
		tq.forceActive = false
		if force || (tq.backing.HasData() && e.s.admissionOK(e)) {
			e.rr = idx + 1
			if e.rr >= n {
				e.rr = 0
			}
			return tq, idx
		}
	}
	return nil, -1
}

// TxQueue is the scheduler-side handle for one attached queue.
type TxQueue struct {
	entity  *Entity
	backing Queue
	slot    int

	// forceActive guarantees one future selection opportunity (e.g. for
	// a retransmission that must go out even though the queue drained).
	// Consumed the first time the selection walk reaches this queue.
	// Guarded by the scheduler mutex.
	forceActive bool
}

// Entity returns the fairness entity this queue belongs to.
func (t *TxQueue) Entity() *Entity { return t.entity }

// Backing returns the opaque queue supplied to AddQueue.
func (t *TxQueue) Backing() Queue { return t.backing }

// Slot returns the queue's index among its entity's siblings.
func (t *TxQueue) Slot() int { return t.slot }
