// Package delay implements busy-wait delay primitives at three
// granularities: quarter-microseconds, whole milliseconds, and tenths
// of seconds. Each primitive is a straight-line blocking call that
// spins on a calibrated countdown; there are no timers, goroutines, or
// sleeps involved, so the calling goroutine owns its core for the full
// requested duration.
//
// The loop counts are derived from a calibration profile, either the
// one taken automatically at package initialization or one installed
// with Configure. If the scheduler preempts a spinning goroutine, the
// produced delay inflates beyond the nominal value; that is inherent
// to busy-wait timing and not detectable from within a call.
package delay

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/sarchlab/spindelay/calibration"
	"github.com/sarchlab/spindelay/spin"
	"github.com/sarchlab/spindelay/timing"
)

// Granularities of the three primitives.
const (
	QuarterMicrosecond = 250 * time.Nanosecond
	MillisecondPass    = time.Millisecond
	DeciSecondPass     = 100 * time.Millisecond
)

// maxByteCount is what a zero 8-bit count requests: an unsigned 8-bit
// countdown decrements 0 to 255 and runs the full 256 repetitions, and
// callers rely on that reading.
const maxByteCount = 256

type plan struct {
	quarter timing.SingleBudget
	milli   timing.NestedBudget
	deci    timing.NestedBudget
}

var currentPlan atomic.Pointer[plan]

func init() {
	Configure(calibration.Measure(calibration.WallClock()))
}

// Configure derives the loop counts of all three primitives from p and
// installs them. The derivation is purely algebraic, so switching to a
// declared fixed-rate profile or to a fresh measurement only requires
// calling Configure again before the next delay call.
//
// Configure panics if the profile cannot satisfy the granularities,
// e.g. a non-positive loop frequency or one too slow to resolve a
// quarter microsecond.
func Configure(p calibration.Profile) {
	if p.LoopFreq <= 0 {
		log.Panic("loop frequency must be positive")
	}

	overheadCycles := p.LoopFreq.Cycles(p.CallOverhead)

	quarter, err := timing.DeriveSingle(
		QuarterMicrosecond, p.LoopFreq, p.CallOverhead)
	if err != nil {
		log.Panic(err)
	}

	milli, err := timing.DeriveNested(
		MillisecondPass, p.LoopFreq, overheadCycles)
	if err != nil {
		log.Panic(err)
	}

	deci, err := timing.DeriveNested(
		DeciSecondPass, p.LoopFreq, overheadCycles)
	if err != nil {
		log.Panic(err)
	}

	currentPlan.Store(&plan{
		quarter: quarter,
		milli:   milli,
		deci:    deci,
	})
}

// QuartersOfMicroseconds busy-waits for approximately count quarter
// microseconds, then returns. Requests small enough that the call
// overhead alone covers them return immediately; past that threshold
// the countdown shrinks by the overhead, so the produced delay stays
// continuous and monotonic across the fast-path boundary.
//
// The maximal request, 65535 quarters, is about 16.4 ms. Every count
// is valid.
func QuartersOfMicroseconds(count uint16) {
	n := currentPlan.Load().quarter.Iterations(count)
	if n == 0 {
		return
	}

	spin.Wait(n)
}

// WholeMilliseconds busy-waits for approximately count milliseconds,
// then returns. A count of 0 requests the maximal delay, 256 ms.
//
// Each millisecond is one calibrated outer-times-inner pass, so the
// residual error accumulates linearly with count and stays bounded by
// count times the per-pass rounding.
func WholeMilliseconds(count uint8) {
	p := currentPlan.Load()
	for reps := stretchZero(count); reps > 0; reps-- {
		runPass(p.milli)
	}
}

// TenthsOfSeconds busy-waits for approximately count tenths of a
// second, then returns. A count of 0 requests the maximal delay,
// 25.6 s. Same pass template as WholeMilliseconds, calibrated to a
// 100 ms pass.
func TenthsOfSeconds(count uint8) {
	p := currentPlan.Load()
	for reps := stretchZero(count); reps > 0; reps-- {
		runPass(p.deci)
	}
}

// stretchZero applies the 0-means-256 wraparound convention of the
// 8-bit counts.
func stretchZero(count uint8) uint32 {
	if count == 0 {
		return maxByteCount
	}

	return uint32(count)
}

func runPass(b timing.NestedBudget) {
	for o := b.Outer; o > 0; o-- {
		spin.Wait(uint64(b.Inner))
	}

	if b.Tail > 0 {
		spin.Wait(uint64(b.Tail))
	}
}
