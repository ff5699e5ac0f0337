package memqueue

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/xraph/airfair"
)

// Compile-time interface checks.
var (
	_ airfair.Queue            = (*FIFO)(nil)
	_ airfair.AirtimeEstimator = (*FIFO)(nil)
)

// DropPolicy selects which frame is shed when a full queue receives
// another one.
type DropPolicy int

const (
	// DropTail rejects the incoming frame.
	DropTail DropPolicy = iota

	// DropHead evicts the oldest queued frame to make room. Preferable
	// for latency-sensitive traffic, where the oldest frame is the least
	// useful one.
	DropHead
)

// Config defines per-queue behaviour such as capacity, load shedding and
// ingress rate limiting.
type Config struct {
	// Capacity is the maximum number of queued frames. Defaults to 512.
	Capacity int

	// Policy selects the load-shedding behaviour at capacity.
	Policy DropPolicy

	// RateLimit is the maximum sustained frames per second admitted into
	// the queue. Zero disables rate limiting.
	RateLimit float64

	// RateBurst is the burst size for the token-bucket rate limiter.
	// Defaults to 1 if RateLimit is set but RateBurst is zero.
	RateBurst int

	// BitRate is the transmit rate in bits per second used for airtime
	// estimation. Defaults to 24 Mbit/s.
	BitRate float64

	// Overhead is the fixed per-frame medium overhead (preamble,
	// interframe spacing, acknowledgement) added to estimates for frames
	// sent outside an aggregation session. Defaults to 50µs.
	Overhead time.Duration
}

// FIFO is a bounded in-memory frame queue. It is safe for concurrent use.
type FIFO struct {
	cfg     Config
	limiter *rate.Limiter

	mu      sync.Mutex
	frames  [][]byte
	head    int
	dropped uint64
}

// New creates a FIFO with the given configuration.
func New(cfg Config) *FIFO {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 512
	}
	if cfg.BitRate <= 0 {
		cfg.BitRate = 24e6
	}
	if cfg.Overhead <= 0 {
		cfg.Overhead = 50 * time.Microsecond
	}
	q := &FIFO{cfg: cfg}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		q.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return q
}

// Enqueue appends a frame and reports whether it was admitted. A frame is
// refused when the rate limiter has no token, or when the queue is full
// under DropTail. Under DropHead the frame is always admitted once past
// the limiter; the oldest frame is evicted instead.
func (q *FIFO) Enqueue(frame []byte) bool {
	if q.limiter != nil && !q.limiter.Allow() {
		q.mu.Lock()
		q.dropped++
		q.mu.Unlock()
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.frames)-q.head >= q.cfg.Capacity {
		if q.cfg.Policy == DropTail {
			q.dropped++
			return false
		}
		q.popLocked()
		q.dropped++
	}
	q.frames = append(q.frames, frame)
	return true
}

// Dequeue removes and returns the oldest frame.
func (q *FIFO) Dequeue() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head >= len(q.frames) {
		return nil, false
	}
	return q.popLocked(), true
}

// popLocked removes the head frame, compacting the backing slice once the
// dead prefix dominates. Lock held.
func (q *FIFO) popLocked() []byte {
	frame := q.frames[q.head]
	q.frames[q.head] = nil
	q.head++
	if q.head > len(q.frames)/2 && q.head >= 32 {
		q.frames = append(q.frames[:0], q.frames[q.head:]...)
		q.head = 0
	}
	return frame
}

// Len returns the number of queued frames.
func (q *FIFO) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames) - q.head
}

// Dropped returns the total number of frames shed since creation,
// counting both policy drops and rate-limiter refusals.
func (q *FIFO) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// HasData implements airfair.Queue.
func (q *FIFO) HasData() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames) > q.head
}

// EstimateAirtime implements airfair.AirtimeEstimator: payload serialization
// time at the configured bit rate, plus the fixed per-frame overhead for
// frames outside an aggregation session. Aggregated frames share their
// session's overhead, so none is attributed here.
func (q *FIFO) EstimateAirtime(frameLen int, aggregated bool) time.Duration {
	bits := float64(frameLen) * 8
	d := time.Duration(bits / q.cfg.BitRate * float64(time.Second))
	if !aggregated {
		d += q.cfg.Overhead
	}
	return d
}
