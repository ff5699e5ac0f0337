package airfair

import (
	"math"
	"time"
)

// reciprocalShift is the fixed-point precision of weight reciprocals.
// Virtual time is measured in microseconds of airtime scaled by
// (1 << reciprocalShift) / weight, so the hot path multiplies instead of
// dividing.
const reciprocalShift = 24

// weightReciprocal precomputes the fixed-point reciprocal of a weight.
// Callers guarantee weight > 0.
func weightReciprocal(weight uint32) uint64 {
	return (1 << reciprocalShift) / uint64(weight)
}

// satAdd returns a+b, saturating at the top of the range. Precision loss
// under extreme values is an accepted approximation; the clock must never
// wrap backwards.
func satAdd(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return math.MaxUint64
}

// satMul returns a*b with the same saturating contract as satAdd.
func satMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	p := a * b
	if p/a != b {
		return math.MaxUint64
	}
	return p
}

// airtimeUnits converts wall-clock airtime into virtual-time units for an
// entity with the given reciprocal.
func airtimeUnits(d time.Duration, reciprocal uint64) uint64 {
	if d <= 0 {
		return 0
	}
	return satMul(uint64(d/time.Microsecond), reciprocal)
}
