package airfair

import "errors"

var (
	// Configuration errors.
	ErrInvalidConfig = errors.New("airfair: invalid configuration")
	ErrInvalidWeight = errors.New("airfair: weight must be positive")

	// Registration errors.
	ErrNilQueue       = errors.New("airfair: nil backing queue")
	ErrQueueCapacity  = errors.New("airfair: entity is at its sibling queue capacity")
	ErrEntityDetached = errors.New("airfair: entity has been removed from its scheduler")
)
