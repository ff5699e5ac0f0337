package airfair

import "time"

// Config holds configuration for one Scheduler instance.
type Config struct {
	// Name labels the access category this instance serves (e.g. "be",
	// "vi") in logs and hook events.
	Name string

	// MaxQueuesPerEntity caps how many sibling queues a single entity
	// may fan out to. The selection engine round-robins across them.
	MaxQueuesPerEntity int

	// ActiveWindow is the trailing window within which an entity that
	// transmitted or received counts as active. The weight sum covers
	// active entities only, and a selection gap longer than the window
	// arms the global virtual-clock catch-up.
	ActiveWindow time.Duration

	// DefaultWeight is the fairness weight assigned to new entities.
	DefaultWeight uint32

	// AQLThresholdLow grants extra slack in the bypass path: an entity
	// may transmit out of turn while its virtual time is within the
	// global clock plus this much airtime scaled by its reciprocal.
	AQLThresholdLow time.Duration

	// AQLThresholdHigh is the admission high-water mark: a queue whose
	// entity has at least this much estimated airtime outstanding is
	// ineligible for selection.
	AQLThresholdHigh time.Duration

	// CountRxAirtime also charges received airtime to the accounting
	// clock. Off by default; only transmit airtime counts.
	CountRxAirtime bool

	// AQLSupported reports whether the integration can estimate
	// outstanding airtime. When false the admission test always passes.
	AQLSupported bool

	// ReportingSupported reports whether the integration delivers
	// confirmed airtime after transmission. When false, Reserve charges
	// the estimate to the accounting clock at dequeue time instead
	// (open-loop degradation).
	ReportingSupported bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Name:               "default",
		MaxQueuesPerEntity: 3,
		ActiveWindow:       100 * time.Millisecond,
		DefaultWeight:      256,
		AQLThresholdLow:    5 * time.Millisecond,
		AQLThresholdHigh:   12 * time.Millisecond,
		CountRxAirtime:     false,
		AQLSupported:       true,
		ReportingSupported: true,
	}
}

// validate reports whether the configuration is usable.
func (c Config) validate() error {
	if c.MaxQueuesPerEntity < 1 {
		return ErrInvalidConfig
	}
	if c.DefaultWeight == 0 {
		return ErrInvalidWeight
	}
	if c.ActiveWindow <= 0 {
		return ErrInvalidConfig
	}
	if c.AQLThresholdLow < 0 || c.AQLThresholdHigh < 0 {
		return ErrInvalidConfig
	}
	return nil
}
