// Package memqueue provides an in-memory frame queue that plugs into an
// airfair scheduler as the backing store behind a transmit queue.
//
// A [FIFO] holds raw frame payloads up to a capacity, sheds load according
// to its drop policy, and optionally gates ingress with a token-bucket
// rate limiter (golang.org/x/time/rate). It implements both halves of the
// scheduler's collaborator contract: [airfair.Queue] for the data-waiting
// test and [airfair.AirtimeEstimator] for AQL reservations.
//
//	q := memqueue.New(memqueue.Config{Capacity: 256, Policy: memqueue.DropHead})
//	tq, _ := entity.AddQueue(q)
//	if q.Enqueue(frame) {
//	    s.ScheduleQueue(tq)
//	}
//
// On the transmit path, reserve the estimate before handing the frame to
// the hardware:
//
//	frame, _ := q.Dequeue()
//	s.Reserve(tq, q.EstimateAirtime(len(frame), false))
package memqueue
