// Package clock provides the millisecond wall-clock timestamps used by
// blocks, the difficulty controller and message origin stamping.
package clock

import "time"

// Timestamp is an integer count of milliseconds since the Unix epoch.
// Ordering is total: a plain integer comparison decides precedence.
type Timestamp int64

// Now returns the current wall-clock time floored to milliseconds.
func Now() Timestamp {
	return FromTime(time.Now())
}

// FromTime floors t to milliseconds and converts it to a Timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// ToEpoch converts a Timestamp to milliseconds since the epoch.
func (ts Timestamp) ToEpoch() uint64 {
	return uint64(ts)
}

// FromEpoch reconstructs a Timestamp from milliseconds since the
// epoch. Round trip with ToEpoch is exact.
func FromEpoch(ms uint64) Timestamp {
	return Timestamp(ms)
}

// Time converts the Timestamp back to a time.Time for formatting.
func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(ts))
}

// Add returns ts shifted by d.
func (ts Timestamp) Add(d time.Duration) Timestamp {
	return ts + Timestamp(d.Milliseconds())
}

// Sub returns the duration between ts and other (ts - other).
func (ts Timestamp) Sub(other Timestamp) time.Duration {
	return time.Duration(ts-other) * time.Millisecond
}
