// Package difficulty implements the proof-of-work difficulty
// controller that keeps block-generation cadence close to a target
// interval by periodically re-scaling the required leading-zero-bit
// count.
package difficulty

import (
	"math"

	"github.com/Time0o/buenzlicoin/chain/clock"
)

// Params are the configuration values the controller is built from.
// They are immutable for the lifetime of a chain, consistent with
// replacing the source's singleton config() accessor with a value
// threaded through constructors.
type Params struct {
	// Interval is the expected number of milliseconds between blocks.
	Interval int64

	// InitialDifficulty is the raw difficulty used until the first
	// adjustment window closes.
	InitialDifficulty float64

	// AdjustAfter is the number of blocks (N) between adjustments.
	AdjustAfter uint64

	// FactorLimit (L) clamps the per-window adjustment factor to
	// [1/L, L].
	FactorLimit float64
}

// Adjuster tracks the running proof-of-work difficulty. It is not safe
// for concurrent use; callers serialize access (the Blockchain's lock
// covers it).
type Adjuster struct {
	params Params

	difficultyRaw        float64
	difficultyLog2       uint
	counter              uint64
	windowStart          clock.Timestamp
	cumulativeDifficulty float64
}

// New constructs an Adjuster with the controller unstarted: the first
// call to Adjust seeds the window. difficultyLog2 is seeded from
// InitialDifficulty immediately, so genesis and every block mined
// before the first adjustment window closes is still held to a real
// proof-of-work target.
func New(params Params) *Adjuster {
	return &Adjuster{
		params:         params,
		difficultyRaw:  params.InitialDifficulty,
		difficultyLog2: uint(math.Max(0, math.Floor(math.Log2(params.InitialDifficulty)))),
	}
}

// Adjust feeds the timestamp of a just-committed block into the
// controller. On the very first call it only seeds the window. Every
// call accumulates the current raw difficulty into the cumulative
// total, matching "running sum of per-block difficulty_raw values".
func (a *Adjuster) Adjust(blockTimestamp clock.Timestamp) {
	a.cumulativeDifficulty += a.difficultyRaw

	if a.counter == 0 {
		a.windowStart = blockTimestamp
		a.counter = 1
		return
	}

	a.counter++

	if a.params.AdjustAfter == 0 || a.counter%a.params.AdjustAfter != 0 {
		return
	}

	elapsed := int64(blockTimestamp - a.windowStart)
	if elapsed <= 0 {
		elapsed = 1
	}

	expected := a.params.Interval * int64(a.params.AdjustAfter)

	factor := float64(expected) / float64(elapsed)
	factor = clamp(factor, 1/a.params.FactorLimit, a.params.FactorLimit)

	a.difficultyRaw *= factor
	a.difficultyLog2 = uint(math.Max(0, math.Floor(math.Log2(a.difficultyRaw))))
	a.windowStart = blockTimestamp
}

// DifficultyLog2 is the current minimum required count of
// leading-zero bits a valid block hash must exhibit.
func (a *Adjuster) DifficultyLog2() uint {
	return a.difficultyLog2
}

// DifficultyRaw exposes the unrounded difficulty value, mostly useful
// for tests asserting exact adjustment factors.
func (a *Adjuster) DifficultyRaw() float64 {
	return a.difficultyRaw
}

// CumulativeDifficulty is the running sum of per-block difficultyRaw
// values, used to compare chains under proof-of-work.
func (a *Adjuster) CumulativeDifficulty() float64 {
	return a.cumulativeDifficulty
}

// Counter returns the number of blocks seen since construction.
func (a *Adjuster) Counter() uint64 {
	return a.counter
}

// Clone returns an independent copy: adjusting the copy leaves the
// original unchanged.
func (a *Adjuster) Clone() *Adjuster {
	clone := *a
	return &clone
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
