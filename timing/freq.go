// Package timing provides frequency arithmetic and loop-budget
// derivation for the busy-wait delay primitives. All loop counts in
// this module are computed algebraically from a loop frequency rather
// than hard-coded, so that recalibrating for a different execution
// environment only requires a new frequency figure.
package timing

import (
	"log"
	"math"
	"time"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive cycles.
func (f Freq) Period() time.Duration {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}
	return time.Duration(float64(time.Second) / float64(f))
}

// Cycles converts a duration to the number of cycles that elapse in it.
func (f Freq) Cycles(d time.Duration) uint64 {
	if d < 0 {
		log.Panic("duration cannot be negative")
	}
	return uint64(math.Round(d.Seconds() * float64(f)))
}

// Duration returns the wall time that n cycles take.
func (f Freq) Duration(n uint64) time.Duration {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}
	return time.Duration(float64(n) / float64(f) * float64(time.Second))
}
