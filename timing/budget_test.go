package timing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DeriveNested", func() {
	It("should split the budget of a millisecond pass", func() {
		b, err := DeriveNested(1*time.Millisecond, 100*MHz, 10)

		Expect(err).ToNot(HaveOccurred())
		Expect(b.Outer).To(Equal(uint32(2)))
		Expect(b.Inner).To(Equal(uint32(49990)))
		Expect(b.Tail).To(Equal(uint32(0)))
	})

	It("should keep the inner count within its cap", func() {
		b, err := DeriveNested(100*time.Millisecond, 1*GHz, 20)

		Expect(err).ToNot(HaveOccurred())
		Expect(b.Inner).To(BeNumerically("<=", MaxInnerCount))
		Expect(b.Outer).To(Equal(uint32(1526)))
	})

	It("should absorb the division remainder in the tail", func() {
		target := 100 * time.Millisecond
		f := 1 * GHz
		overhead := uint64(20)

		b, err := DeriveNested(target, f, overhead)

		Expect(err).ToNot(HaveOccurred())
		Expect(b.TotalCycles(overhead)).To(Equal(f.Cycles(target)))
	})

	It("should hit the budget exactly for representative frequencies", func() {
		freqs := []Freq{8 * MHz, 16 * MHz, 100 * MHz, 1 * GHz, 2.4 * GHz}
		for _, f := range freqs {
			b, err := DeriveNested(1*time.Millisecond, f, 12)

			Expect(err).ToNot(HaveOccurred())
			Expect(b.TotalCycles(12)).To(Equal(f.Cycles(1 * time.Millisecond)))
		}
	})

	It("should refuse a target shorter than one cycle", func() {
		_, err := DeriveNested(1*time.Millisecond, 1*Hz, 0)

		Expect(err).To(MatchError(ErrTargetTooShort))
	})

	It("should refuse an overhead that dominates the budget", func() {
		_, err := DeriveNested(1*time.Microsecond, 1*MHz, 2)

		Expect(err).To(MatchError(ErrOverheadDominates))
	})
})

var _ = Describe("SingleBudget", func() {
	It("should derive the per-unit cycle cost", func() {
		b, err := DeriveSingle(250*time.Nanosecond, 100*MHz, 200*time.Nanosecond)

		Expect(err).ToNot(HaveOccurred())
		Expect(b.CyclesPerUnit).To(BeNumerically("~", 25.0, 1e-9))
		Expect(b.OverheadCycles).To(Equal(uint64(20)))
		Expect(b.MinUnits).To(Equal(uint16(0)))
	})

	It("should cover small requests with the call overhead", func() {
		b, err := DeriveSingle(250*time.Nanosecond, 100*MHz, 2*time.Microsecond)

		Expect(err).ToNot(HaveOccurred())
		Expect(b.MinUnits).To(Equal(uint16(8)))
		Expect(b.Iterations(8)).To(Equal(uint64(0)))
		Expect(b.Iterations(0)).To(Equal(uint64(0)))
	})

	It("should step continuously across the fast-path boundary", func() {
		b, err := DeriveSingle(250*time.Nanosecond, 100*MHz, 2*time.Microsecond)

		Expect(err).ToNot(HaveOccurred())

		atBoundary := b.Iterations(b.MinUnits)
		pastBoundary := b.Iterations(b.MinUnits + 1)

		Expect(atBoundary).To(Equal(uint64(0)))
		Expect(float64(pastBoundary)).To(
			BeNumerically("<=", b.CyclesPerUnit+1))
	})

	It("should grow monotonically with the request", func() {
		b, err := DeriveSingle(250*time.Nanosecond, 100*MHz, 1*time.Microsecond)

		Expect(err).ToNot(HaveOccurred())

		prev := uint64(0)
		for n := uint16(1); n < 200; n++ {
			curr := b.Iterations(n)
			Expect(curr).To(BeNumerically(">=", prev))
			prev = curr
		}
	})

	It("should subtract the overhead from large requests", func() {
		b, err := DeriveSingle(250*time.Nanosecond, 100*MHz, 2*time.Microsecond)

		Expect(err).ToNot(HaveOccurred())
		// 1000 units = 250 us = 25000 cycles, minus 200 overhead cycles.
		Expect(b.Iterations(1000)).To(Equal(uint64(24800)))
	})

	It("should refuse a unit shorter than one cycle", func() {
		_, err := DeriveSingle(250*time.Nanosecond, 1*MHz, 0)

		Expect(err).To(MatchError(ErrTargetTooShort))
	})
})
