package airfair

import "time"

// ReportAirtime feeds confirmed medium-occupancy time back into the
// fairness accounting after a real transmission. Transmit airtime always
// counts; receive airtime only when Config.CountRxAirtime is set. This is
// the only path by which real elapsed time enters the virtual-time
// domain: the accounting clock advances by the charged airtime scaled by
// the entity's weight reciprocal.
func (s *Scheduler) ReportAirtime(tq *TxQueue, tx, rx time.Duration) {
	s.mu.Lock()
	defer s.unlockAndEmit()
	e := tq.entity
	if e.s != s {
		s.assert("airtime report for foreign queue", e)
		return
	}
	if e.detached {
		return
	}

	e.txAirtime += tx
	e.rxAirtime += rx

	charged := tx
	if s.cfg.CountRxAirtime {
		charged += rx
	}
	if charged > 0 {
		s.charge(e, charged)
	}

	s.markActive(e, s.clock())

	ref := e.ref()
	s.emit(func() { s.hooks.EmitAirtimeReported(ref, tx, rx) })
}

// Reserve records estimated airtime for a frame leaving the queue. It is
// the fast-path half of the AQL feed and deliberately does not take the
// scheduler lock: the pending counter is atomic, and the ordering key
// only picks the new value up at the next return or resort.
//
// When completion reporting is unsupported, the estimate is instead
// charged to the accounting clock immediately (open-loop degradation),
// which does require the lock.
func (s *Scheduler) Reserve(tq *TxQueue, estimated time.Duration) {
	us := int64(estimated / time.Microsecond)
	if us <= 0 {
		return
	}
	e := tq.entity
	e.pendingAirtime.Add(us)

	if s.cfg.ReportingSupported {
		return
	}
	s.mu.Lock()
	defer s.unlockAndEmit()
	if e.detached {
		return
	}
	e.txAirtime += estimated
	s.charge(e, estimated)
	s.markActive(e, s.clock())
}

// Complete releases reserved airtime once the frame's fate is known. The
// caller passes the same estimate it reserved; actual consumption arrives
// separately via ReportAirtime.
func (s *Scheduler) Complete(tq *TxQueue, estimated time.Duration) {
	us := int64(estimated / time.Microsecond)
	if us <= 0 {
		return
	}
	tq.entity.pendingAirtime.Add(-us)
}

// charge advances the accounting clock and re-keys the entity if it is
// scheduled. Lock held.
func (s *Scheduler) charge(e *Entity, airtime time.Duration) {
	e.vt = satAdd(e.vt, airtimeUnits(airtime, e.reciprocal))
	if e.vtCur < e.vt {
		e.vtCur = e.vt
	}
	if e.node.InList() {
		s.resort(e)
	}
}
