package airfair

import (
	"log/slog"
	"time"

	"github.com/xraph/airfair/hook"
)

// Option configures a Scheduler.
type Option func(*Scheduler) error

// WithConfig replaces the entire configuration. Validation happens once
// all options have been applied.
func WithConfig(cfg Config) Option {
	return func(s *Scheduler) error {
		s.cfg = cfg
		return nil
	}
}

// WithName sets the access-category label used in logs and hook events.
func WithName(name string) Option {
	return func(s *Scheduler) error {
		s.cfg.Name = name
		return nil
	}
}

// WithLogger sets the structured logger for the scheduler.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) error {
		s.logger = l
		return nil
	}
}

// WithHooks sets the extension registry that receives lifecycle events.
func WithHooks(r *hook.Registry) Option {
	return func(s *Scheduler) error {
		s.hooks = r
		return nil
	}
}

// WithClock overrides the wall-clock source. Intended for tests that
// exercise the activity window and catch-up without sleeping.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) error {
		s.clock = clock
		return nil
	}
}

// WithDefaultWeight sets the fairness weight assigned to new entities.
func WithDefaultWeight(w uint32) Option {
	return func(s *Scheduler) error {
		s.cfg.DefaultWeight = w
		return nil
	}
}

// WithAQLThresholds sets the admission high-water mark and the bypass
// slack low-water mark.
func WithAQLThresholds(low, high time.Duration) Option {
	return func(s *Scheduler) error {
		s.cfg.AQLThresholdLow = low
		s.cfg.AQLThresholdHigh = high
		return nil
	}
}

// WithCapabilities declares what the surrounding integration supports.
// aql enables the admission test; reporting enables confirmed-airtime
// accounting (when false, estimates are charged at dequeue time).
func WithCapabilities(aql, reporting bool) Option {
	return func(s *Scheduler) error {
		s.cfg.AQLSupported = aql
		s.cfg.ReportingSupported = reporting
		return nil
	}
}
