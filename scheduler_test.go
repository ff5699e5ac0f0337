package airfair

import (
	"testing"
	"time"

	"github.com/xraph/airfair/id"
)

// stubQueue is a minimal collaborator: a frame counter.
type stubQueue struct {
	frames int
}

func (q *stubQueue) HasData() bool { return q.frames > 0 }

// fakeClock is a manually advanced wall clock for window/catch-up tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestScheduler(t *testing.T, opts ...Option) *Scheduler {
	t.Helper()
	s, err := New(opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

// addEntity registers an entity with one backed queue holding `frames`
// frames and schedules it.
func addEntity(t *testing.T, s *Scheduler, frames int) (*Entity, *TxQueue, *stubQueue) {
	t.Helper()
	e := s.NewEntity(id.NewStationID(), 0)
	q := &stubQueue{frames: frames}
	tq, err := e.AddQueue(q)
	if err != nil {
		t.Fatalf("AddQueue failed: %v", err)
	}
	if frames > 0 {
		s.ScheduleQueue(tq)
	}
	return e, tq, q
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNew_Defaults(t *testing.T) {
	s := newTestScheduler(t)
	cfg := s.Config()
	if cfg.MaxQueuesPerEntity != 3 {
		t.Errorf("MaxQueuesPerEntity = %d, want 3", cfg.MaxQueuesPerEntity)
	}
	if cfg.DefaultWeight != 256 {
		t.Errorf("DefaultWeight = %d, want 256", cfg.DefaultWeight)
	}
	if cfg.ActiveWindow != 100*time.Millisecond {
		t.Errorf("ActiveWindow = %v, want 100ms", cfg.ActiveWindow)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero queues", func() Config { c := DefaultConfig(); c.MaxQueuesPerEntity = 0; return c }()},
		{"zero weight", func() Config { c := DefaultConfig(); c.DefaultWeight = 0; return c }()},
		{"zero window", func() Config { c := DefaultConfig(); c.ActiveWindow = 0; return c }()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(WithConfig(tt.cfg)); err == nil {
				t.Error("New should reject the configuration")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Entity registration
// ---------------------------------------------------------------------------

func TestNewEntity_Defaults(t *testing.T) {
	s := newTestScheduler(t)
	e := s.NewEntity(id.NewStationID(), 2)

	if e.Weight() != 256 {
		t.Errorf("Weight() = %d, want 256", e.Weight())
	}
	if e.VirtualTime() != 0 {
		t.Errorf("VirtualTime() = %d, want 0", e.VirtualTime())
	}
	if e.TrafficClass() != 2 {
		t.Errorf("TrafficClass() = %d, want 2", e.TrafficClass())
	}
	if e.Scheduled() {
		t.Error("fresh entity should not be scheduled")
	}
}

func TestAddQueue_Validation(t *testing.T) {
	s := newTestScheduler(t)
	e := s.NewEntity(id.NewStationID(), 0)

	if _, err := e.AddQueue(nil); err != ErrNilQueue {
		t.Errorf("AddQueue(nil) err = %v, want ErrNilQueue", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := e.AddQueue(&stubQueue{}); err != nil {
			t.Fatalf("AddQueue %d failed: %v", i, err)
		}
	}
	if _, err := e.AddQueue(&stubQueue{}); err != ErrQueueCapacity {
		t.Errorf("fourth AddQueue err = %v, want ErrQueueCapacity", err)
	}
}

func TestRemoveEntity(t *testing.T) {
	s := newTestScheduler(t)
	e, tq, _ := addEntity(t, s, 5)

	if !e.Scheduled() {
		t.Fatal("entity should be scheduled")
	}
	s.RemoveEntity(e)
	if e.Scheduled() {
		t.Error("removed entity should not be scheduled")
	}
	if _, err := e.AddQueue(&stubQueue{}); err != ErrEntityDetached {
		t.Errorf("AddQueue after removal err = %v, want ErrEntityDetached", err)
	}

	// Operations on queues of a detached entity are no-ops.
	s.ScheduleQueue(tq)
	if s.Len() != 0 {
		t.Error("detached entity must not re-enter the schedule")
	}
}

// ---------------------------------------------------------------------------
// Schedule / unschedule
// ---------------------------------------------------------------------------

func TestScheduleQueue_NoDuplicates(t *testing.T) {
	s := newTestScheduler(t)
	_, tq, _ := addEntity(t, s, 5)

	s.ScheduleQueue(tq)
	s.ScheduleQueue(tq)
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (no duplicate scheduling)", s.Len())
	}
}

func TestUnscheduleQueue(t *testing.T) {
	s := newTestScheduler(t)
	e, tq, q := addEntity(t, s, 5)

	// A sibling with data keeps the entity scheduled.
	sibQ := &stubQueue{frames: 1}
	sib, err := e.AddQueue(sibQ)
	if err != nil {
		t.Fatal(err)
	}
	q.frames = 0
	s.UnscheduleQueue(tq)
	if !e.Scheduled() {
		t.Fatal("entity with an eligible sibling should stay scheduled")
	}

	sibQ.frames = 0
	s.UnscheduleQueue(sib)
	if e.Scheduled() {
		t.Fatal("entity with no eligible queue should leave the schedule")
	}
}

// ---------------------------------------------------------------------------
// Weights
// ---------------------------------------------------------------------------

func TestUpdateWeight_RejectsZero(t *testing.T) {
	s := newTestScheduler(t)
	e := s.NewEntity(id.NewStationID(), 0)
	if err := s.UpdateWeight(e, 0); err != ErrInvalidWeight {
		t.Errorf("UpdateWeight(0) err = %v, want ErrInvalidWeight", err)
	}
}

func TestUpdateWeight_KeepsClockMonotone(t *testing.T) {
	s := newTestScheduler(t)
	_, tq, _ := addEntity(t, s, 100)
	e := tq.Entity()

	s.ReportAirtime(tq, 4*time.Millisecond, 0)
	before := e.VirtualTime()

	for _, w := range []uint32{16, 1024, 1, 256} {
		if err := s.UpdateWeight(e, w); err != nil {
			t.Fatalf("UpdateWeight(%d) failed: %v", w, err)
		}
		if got := e.VirtualTime(); got != before {
			t.Fatalf("weight change moved the clock: %d -> %d", before, got)
		}
		s.ReportAirtime(tq, time.Millisecond, 0)
		if got := e.VirtualTime(); got < before {
			t.Fatalf("virtual time went backwards: %d -> %d", before, got)
		}
		before = e.VirtualTime()
	}
}

func TestWeightSum_TracksActiveEntities(t *testing.T) {
	clock := newFakeClock()
	s := newTestScheduler(t, WithClock(clock.Now))

	eA, _, _ := addEntity(t, s, 5)
	_, tqB, qB := addEntity(t, s, 5)

	if got := s.WeightSum(); got != 512 {
		t.Fatalf("WeightSum() = %d, want 512 (two scheduled entities)", got)
	}

	// Drain B and unschedule it; after the window lapses it no longer
	// counts toward the sum.
	qB.frames = 0
	s.UnscheduleQueue(tqB)
	clock.advance(200 * time.Millisecond)

	// Recomputation is lazy: a weight update forces it.
	if err := s.UpdateWeight(eA, eA.Weight()); err != nil {
		t.Fatal(err)
	}
	if got := s.WeightSum(); got != 256 {
		t.Fatalf("WeightSum() = %d, want 256 after B expired", got)
	}
}

// ---------------------------------------------------------------------------
// Bypass test
// ---------------------------------------------------------------------------

func TestMayTransmit(t *testing.T) {
	s := newTestScheduler(t)
	_, tq, _ := addEntity(t, s, 100)

	// Fresh entity with zero consumed virtual time may always transmit.
	if !s.MayTransmit(tq) {
		t.Fatal("fresh entity should pass the bypass test")
	}

	// Consume more airtime than the slack allows (low threshold 5ms,
	// global clock still zero): the bypass must close.
	s.ReportAirtime(tq, 6*time.Millisecond, 0)
	if s.MayTransmit(tq) {
		t.Fatal("entity past the slack-adjusted global clock should fail the bypass test")
	}
}

func TestMayTransmit_DetachedEntity(t *testing.T) {
	s := newTestScheduler(t)
	e, tq, _ := addEntity(t, s, 1)
	s.RemoveEntity(e)
	if s.MayTransmit(tq) {
		t.Fatal("detached entity must not pass the bypass test")
	}
}
