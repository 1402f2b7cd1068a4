package delay_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/spindelay/calibration"
	"github.com/sarchlab/spindelay/delay"
	"github.com/sarchlab/spindelay/timing"
)

func elapsed(f func()) time.Duration {
	start := time.Now()
	f()
	return time.Since(start)
}

// The bounds below are deliberately loose. A calibrated spin is
// usually within a few percent of nominal, but frequency scaling and
// scheduler preemption can stretch individual runs on a shared host.

var _ = Describe("WholeMilliseconds", func() {
	It("should delay close to the nominal duration", func() {
		e := elapsed(func() { delay.WholeMilliseconds(10) })

		Expect(e).To(BeNumerically(">=", 6*time.Millisecond))
		Expect(e).To(BeNumerically("<=", 16*time.Millisecond))
	})

	It("should delay monotonically with the count", func() {
		e1 := elapsed(func() { delay.WholeMilliseconds(1) })
		e2 := elapsed(func() { delay.WholeMilliseconds(8) })
		e3 := elapsed(func() { delay.WholeMilliseconds(50) })

		Expect(e1).To(BeNumerically("<", e2))
		Expect(e2).To(BeNumerically("<", e3))
	})

	It("should treat a zero count as 256", func() {
		e := elapsed(func() { delay.WholeMilliseconds(0) })

		Expect(e).To(BeNumerically(">=", 180*time.Millisecond))
		Expect(e).To(BeNumerically("<=", 400*time.Millisecond))
	})

	It("should accumulate error linearly, not superlinearly", func() {
		e10 := elapsed(func() { delay.WholeMilliseconds(10) })
		e100 := elapsed(func() { delay.WholeMilliseconds(100) })

		perUnit10 := float64(e10) / 10
		perUnit100 := float64(e100) / 100

		Expect(perUnit100).To(BeNumerically("<", perUnit10*2))
	})

	It("should behave the same on consecutive calls", func() {
		e1 := elapsed(func() { delay.WholeMilliseconds(20) })
		e2 := elapsed(func() { delay.WholeMilliseconds(20) })

		ratio := float64(e1) / float64(e2)
		Expect(ratio).To(BeNumerically(">", 0.5))
		Expect(ratio).To(BeNumerically("<", 2.0))
	})
})

var _ = Describe("TenthsOfSeconds", func() {
	It("should delay close to one tenth of a second", func() {
		e := elapsed(func() { delay.TenthsOfSeconds(1) })

		Expect(e).To(BeNumerically(">=", 70*time.Millisecond))
		Expect(e).To(BeNumerically("<=", 150*time.Millisecond))
	})

	It("should delay monotonically with the count", func() {
		e1 := elapsed(func() { delay.TenthsOfSeconds(1) })
		e3 := elapsed(func() { delay.TenthsOfSeconds(3) })

		Expect(e1).To(BeNumerically("<", e3))
	})
})

var _ = Describe("QuartersOfMicroseconds", func() {
	It("should return almost immediately for a tiny request", func() {
		e := elapsed(func() { delay.QuartersOfMicroseconds(4) })

		Expect(e).To(BeNumerically("<", 1*time.Millisecond))
	})

	It("should delay close to nominal for a large request", func() {
		// 40000 quarters = 10 ms.
		e := elapsed(func() { delay.QuartersOfMicroseconds(40000) })

		Expect(e).To(BeNumerically(">=", 6*time.Millisecond))
		Expect(e).To(BeNumerically("<=", 16*time.Millisecond))
	})

	It("should delay monotonically with the count", func() {
		e1 := elapsed(func() { delay.QuartersOfMicroseconds(4000) })
		e2 := elapsed(func() { delay.QuartersOfMicroseconds(40000) })

		Expect(e1).To(BeNumerically("<", e2))
	})
})

var _ = Describe("Configure", func() {
	AfterEach(func() {
		delay.Configure(calibration.Measure(calibration.WallClock()))
	})

	It("should accept a fresh measurement", func() {
		Expect(func() {
			delay.Configure(calibration.Measure(calibration.WallClock()))
		}).ToNot(Panic())
	})

	It("should reject a zero loop frequency", func() {
		Expect(func() {
			delay.Configure(calibration.Fixed(0, 0))
		}).To(Panic())
	})

	It("should reject a rate too slow for a quarter microsecond", func() {
		Expect(func() {
			delay.Configure(calibration.Fixed(1*timing.MHz, 0))
		}).To(Panic())
	})
})
