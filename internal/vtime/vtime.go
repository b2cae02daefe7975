// Package vtime defines the virtual clock primitives shared by the kernel
// core. Virtual time never advances spontaneously: it is the deterministic
// substrate the simulated kernel relies on for reproducible audit logs (P10).
package vtime

import "time"

// Duration is a virtual-time span, expressed in nanoseconds like time.Duration
// but never derived from the wall clock inside the core.
type Duration = time.Duration

// Instant is a single point on the virtual clock, measured in nanoseconds
// since the clock's epoch (kernel creation).
type Instant struct {
	nanos int64
}

// Zero is the clock's epoch instant.
var Zero = Instant{}

// InstantAt returns the Instant at the given nanosecond offset from the
// clock's epoch.
func InstantAt(nanos int64) Instant { return Instant{nanos: nanos} }

// Nanos returns the instant's nanosecond offset from the epoch.
func (i Instant) Nanos() int64 { return i.nanos }

// Add returns the instant advanced by d.
func (i Instant) Add(d Duration) Instant {
	return Instant{nanos: i.nanos + int64(d)}
}

// Sub returns the duration between i and other (i - other).
func (i Instant) Sub(other Instant) Duration {
	return Duration(i.nanos - other.nanos)
}

// Before reports whether i occurs strictly before other.
func (i Instant) Before(other Instant) bool { return i.nanos < other.nanos }

// After reports whether i occurs strictly after other.
func (i Instant) After(other Instant) bool { return i.nanos > other.nanos }

// Clock is the minimal virtual-time surface the kernel core depends on.
// The simulated kernel is both a Clock and the sole mutator of one; no other
// component advances time.
type Clock interface {
	Now() Instant
}

// ManualClock is a Clock that only advances when Advance is called. It is the
// concrete clock used by SimulatedKernel.
type ManualClock struct {
	now Instant
}

// NewManualClock returns a clock starting at the epoch.
func NewManualClock() *ManualClock {
	return &ManualClock{now: Zero}
}

// Now returns the current virtual instant.
func (c *ManualClock) Now() Instant { return c.now }

// Advance moves the clock forward by d. Negative durations panic: time moving
// backwards is a violated internal invariant, not a recoverable error (see
// spec §7 "panics are reserved for violated internal invariants").
func (c *ManualClock) Advance(d Duration) Instant {
	if d < 0 {
		panic("vtime: clock cannot move backwards")
	}
	c.now = c.now.Add(d)
	return c.now
}
