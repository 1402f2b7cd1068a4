// Package calibration measures the cost of the spin kernel on the
// executing host and packages the result as a profile that the delay
// primitives derive their loop counts from. The loop frequency plays
// the role of the target clock frequency: every loop-count constant in
// the delay package is recomputed from it algebraically.
package calibration

import (
	"sort"
	"time"

	"github.com/rs/xid"
	"github.com/shirou/gopsutil/cpu"

	"github.com/sarchlab/spindelay/spin"
	"github.com/sarchlab/spindelay/timing"
)

// TimeSource provides monotonic timestamps for rate measurements.
type TimeSource interface {
	Now() time.Time
}

// WallClock returns the TimeSource backed by the host monotonic clock.
func WallClock() TimeSource {
	return wallClock{}
}

type wallClock struct{}

func (wallClock) Now() time.Time {
	return time.Now()
}

// A Profile describes the measured or declared timing characteristics
// of the spin kernel on one host.
type Profile struct {
	// ID identifies one calibration run.
	ID string

	// MeasuredAt is the wall time the profile was taken.
	MeasuredAt time.Time

	// LoopFreq is the rate at which the spin kernel retires countdown
	// steps, in steps per second.
	LoopFreq timing.Freq

	// CallOverhead is the cost of calling and returning from the spin
	// kernel with an empty countdown.
	CallOverhead time.Duration

	// Samples is the number of rate samples the profile is the median
	// of. It is 0 for declared, unmeasured profiles.
	Samples int

	// CPUModel and CPUMHz describe the host processor, when available.
	CPUModel string
	CPUMHz   float64
}

const (
	// probeIterations is the countdown length of one rate sample. Large
	// enough that timestamping cost vanishes in the measurement, small
	// enough that one sample stays in the low milliseconds.
	probeIterations = 1 << 23

	// overheadCalls is the number of empty kernel calls timed to
	// resolve the per-call overhead.
	overheadCalls = 65536

	defaultSamples = 5
)

// Measure times the spin kernel against ts and returns the resulting
// profile. The reported loop frequency is the median of several
// samples, which keeps one descheduling hiccup from skewing the rate.
func Measure(ts TimeSource) Profile {
	rates := make([]float64, defaultSamples)
	for i := range rates {
		start := ts.Now()
		spin.Wait(probeIterations)
		elapsed := ts.Now().Sub(start)
		rates[i] = probeIterations / elapsed.Seconds()
	}
	sort.Float64s(rates)

	start := ts.Now()
	for i := 0; i < overheadCalls; i++ {
		spin.Wait(0)
	}
	overhead := ts.Now().Sub(start) / overheadCalls

	p := Profile{
		ID:           xid.New().String(),
		MeasuredAt:   time.Now(),
		LoopFreq:     timing.Freq(rates[len(rates)/2]),
		CallOverhead: overhead,
		Samples:      defaultSamples,
	}
	fillHostInfo(&p)

	return p
}

// Fixed returns a profile for a declared, fixed loop frequency,
// skipping measurement. This is the path for hosts whose kernel rate
// is known ahead of time.
func Fixed(f timing.Freq, overhead time.Duration) Profile {
	return Profile{
		ID:           xid.New().String(),
		MeasuredAt:   time.Now(),
		LoopFreq:     f,
		CallOverhead: overhead,
	}
}

func fillHostInfo(p *Profile) {
	infos, err := cpu.Info()
	if err != nil || len(infos) == 0 {
		return
	}

	p.CPUModel = infos[0].ModelName
	p.CPUMHz = infos[0].Mhz
}
