// Package airfair provides a fairness-aware transmission scheduler for a
// shared wireless medium. It multiplexes many per-station, per-traffic-class
// queues onto one link, giving each participant a configurable proportional
// share of airtime regardless of transmission rate, queue depth, or
// burstiness.
//
// Airfair is designed as a library, not a service. It makes no scheduling
// decisions on its own goroutine: every operation executes synchronously
// inside the caller's transmit path.
//
// # Quick Start
//
//	s, err := airfair.New(
//	    airfair.WithName("be"),
//	    airfair.WithLogger(logger),
//	)
//	e := s.NewEntity(station, 0)
//	tq, err := e.AddQueue(fifo)
//	s.ScheduleQueue(tq) // on first enqueue
//
//	s.BeginPass()
//	for lease := s.Next(); lease != nil; lease = s.Next() {
//	    // transmit from lease.Queue(), then:
//	    lease.Return(false)
//	}
//
// # Architecture
//
// Scheduling order is a virtual-time weighted fair queue: each entity
// (station × traffic class) carries an accounting clock advanced by its
// consumed airtime scaled by the reciprocal of its weight, and the entity
// with the smallest clock transmits next. Active entities are held in a
// probabilistic skip list (package skiplist), chosen because the order key
// changes after nearly every dequeue and a skip list re-keys without any
// rebalancing cascade.
//
// One Scheduler instance serves one access category. Instances are fully
// independent; a single mutex per instance serializes its skip-list and
// entity mutations in bounded critical sections. The AQL pending counter
// is the one piece of state deliberately updated outside that lock, with
// atomics, so the per-frame path never contends on it.
//
// Lifecycle events fan out through the hook package; the observability
// package ships an OTel-backed hook implementation.
package airfair
