package airfair

import (
	"math"
	"testing"
	"time"
)

func TestWeightReciprocal(t *testing.T) {
	tests := []struct {
		weight uint32
		want   uint64
	}{
		{1, 1 << 24},
		{256, 65536},
		{768, 21845},
		{1024, 16384},
	}
	for _, tt := range tests {
		if got := weightReciprocal(tt.weight); got != tt.want {
			t.Errorf("weightReciprocal(%d) = %d, want %d", tt.weight, got, tt.want)
		}
	}
}

func TestSaturatingArithmetic(t *testing.T) {
	if got := satAdd(math.MaxUint64-1, 5); got != math.MaxUint64 {
		t.Errorf("satAdd overflow = %d, want MaxUint64", got)
	}
	if got := satAdd(10, 20); got != 30 {
		t.Errorf("satAdd(10, 20) = %d", got)
	}
	if got := satMul(math.MaxUint64/2, 3); got != math.MaxUint64 {
		t.Errorf("satMul overflow = %d, want MaxUint64", got)
	}
	if got := satMul(0, math.MaxUint64); got != 0 {
		t.Errorf("satMul(0, x) = %d", got)
	}
	if got := satMul(7, 6); got != 42 {
		t.Errorf("satMul(7, 6) = %d", got)
	}
}

func TestAirtimeUnits(t *testing.T) {
	rec := weightReciprocal(256)
	if got := airtimeUnits(time.Millisecond, rec); got != 1000*rec {
		t.Errorf("airtimeUnits(1ms) = %d, want %d", got, 1000*rec)
	}
	if got := airtimeUnits(-time.Second, rec); got != 0 {
		t.Errorf("airtimeUnits(negative) = %d, want 0", got)
	}
	if got := airtimeUnits(500*time.Nanosecond, rec); got != 0 {
		t.Errorf("sub-microsecond airtime = %d, want 0", got)
	}
}
