package airfair

// Lease is one selection result: permission to transmit from a queue.
// Its entity has been dequeued from the schedule and stays out until the
// lease is consumed by exactly one of Return or Drop; a lease that is
// never consumed removes the entity from scheduling entirely.
type Lease struct {
	s        *Scheduler
	tq       *TxQueue
	consumed bool
}

// Queue returns the transmit queue this lease grants.
func (l *Lease) Queue() *TxQueue { return l.tq }

// Entity returns the fairness entity behind the leased queue.
func (l *Lease) Entity() *Entity { return l.tq.entity }

// BeginPass starts a scheduling round: the selection walk forgets its
// position and restarts from the current minimum. Call it once before
// each burst of Next calls.
func (s *Scheduler) BeginPass() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = nil
}

// Next returns the next queue to transmit from, or nil when the pass is
// over — either the schedule is empty or the walk has come back around to
// the entity served last. The winning entity is removed from the schedule
// for the duration of the lease.
func (s *Scheduler) Next() *Lease {
	s.mu.Lock()
	defer s.unlockAndEmit()

	now := s.clock()
	s.maybeCatchUp(now)

	first := true
	for {
		front := s.list.Front()
		if front == nil {
			return nil
		}
		e := front.Item()
		if e == s.cursor {
			// The walk wrapped; everyone has had a turn this pass.
			return nil
		}
		wasMin := first
		first = false
		s.list.PopFront()

		tq, slot := e.nextEligible()
		if tq == nil {
			// No eligible sibling. The entity leaves the schedule; it
			// re-enters only via ScheduleQueue or a return.
			s.retireEntity(e)
			continue
		}

		// If the globally slowest entity is still ahead of the virtual
		// clock, pull the clock up to its lookahead so it cannot starve
		// faster entities of their turn while waiting.
		if wasMin && e.vtCur > s.vtGlobal {
			s.catchUpTo(e.vtCur)
		}

		s.cursor = e
		s.lastActivity = now
		s.markActive(e, now)
		s.outstanding++

		ref := e.ref()
		s.emit(func() { s.hooks.EmitQueueSelected(ref, slot) })
		return &Lease{s: s, tq: tq}
	}
}

// Return consumes the lease after a transmit burst. The ordering key is
// recomputed from the pending AQL budget; the entity is reinserted while
// any of its sibling queues still holds data or carries a force flag, and
// unscheduled otherwise. force guarantees the leased queue one future
// selection opportunity even when drained, e.g. for a retransmission.
func (l *Lease) Return(force bool) {
	s := l.s
	s.mu.Lock()
	defer s.unlockAndEmit()
	if !l.begin("Return") {
		return
	}
	s.returnQueue(l.tq, force)
}

// Drop consumes the lease and fully retires the queue: the entity is not
// reinserted and leaves the schedule.
func (l *Lease) Drop() {
	s := l.s
	s.mu.Lock()
	defer s.unlockAndEmit()
	if !l.begin("Drop") {
		return
	}
	s.retireEntity(l.tq.entity)
}

// begin marks the lease consumed, flagging double consumption. Lock held.
func (l *Lease) begin(op string) bool {
	if l.consumed {
		l.s.assert("lease consumed twice in "+op, l.tq.entity)
		return false
	}
	l.consumed = true
	l.s.outstanding--
	return true
}

// returnQueue implements the return operation. Lock held.
func (s *Scheduler) returnQueue(tq *TxQueue, force bool) {
	e := tq.entity
	if e.detached {
		return
	}

	if !s.admissionOK(e) {
		// Over the AQL budget: park the entity until completions free
		// headroom and the integration schedules it again.
		s.retireEntity(e)
		return
	}

	if force && !tq.backing.HasData() {
		tq.forceActive = true
	}

	// The entity stays in the schedule as long as any sibling queue is
	// eligible, not just the one that was leased.
	eligible := false
	for _, sib := range e.queues {
		if sib.forceActive || sib.backing.HasData() {
			eligible = true
			break
		}
	}
	if !eligible {
		s.retireEntity(e)
		return
	}
	if e.node.InList() {
		// Scheduled again behind our back (enqueue during the burst);
		// the key may have moved, so re-sort. resort refreshes the key
		// only after the node is unlinked.
		s.resort(e)
		return
	}
	e.refreshLookahead()
	s.list.Insert(e.node)
}
