package timing

import (
	"errors"
	"math"
	"time"
)

// MaxInnerCount caps the inner countdown of a nested budget. Keeping
// the inner count bounded keeps the outer loop responsible for the
// coarse split of the cycle budget, mirroring the outer/inner
// calibration of the original fixed-frequency loops.
const MaxInnerCount = 65535

var (
	// ErrTargetTooShort indicates that the pass target is shorter than
	// one cycle at the given frequency.
	ErrTargetTooShort = errors.New("pass target is shorter than one cycle")

	// ErrOverheadDominates indicates that the per-iteration bookkeeping
	// cost alone exceeds the pass target, leaving no budget for the
	// inner countdown.
	ErrOverheadDominates = errors.New("bookkeeping overhead exceeds the pass target")
)

// NestedBudget describes one calibrated outer-times-inner pass. A pass
// runs Outer outer iterations, each consisting of an Inner-step
// countdown plus a fixed bookkeeping cost, followed by a Tail-step
// countdown that absorbs the division remainder of the cycle budget.
type NestedBudget struct {
	Outer uint32
	Inner uint32
	Tail  uint32
}

// DeriveNested splits the cycle budget of target at loop frequency f
// into an outer count, a fixed inner countdown, and a tail countdown.
// overhead is the bookkeeping cost, in cycles, that each outer
// iteration pays on top of its inner countdown.
func DeriveNested(
	target time.Duration,
	f Freq,
	overhead uint64,
) (NestedBudget, error) {
	total := f.Cycles(target)
	if total == 0 {
		return NestedBudget{}, ErrTargetTooShort
	}

	outer := (total + MaxInnerCount - 1) / MaxInnerCount
	if outer*overhead >= total {
		return NestedBudget{}, ErrOverheadDominates
	}

	inner := (total - outer*overhead) / outer
	tail := total - outer*(inner+overhead)

	return NestedBudget{
		Outer: uint32(outer),
		Inner: uint32(inner),
		Tail:  uint32(tail),
	}, nil
}

// TotalCycles returns the cycle cost of one pass, including the given
// per-outer-iteration overhead. It equals the cycle budget of the pass
// target up to the rounding of the budget itself.
func (b NestedBudget) TotalCycles(overhead uint64) uint64 {
	return uint64(b.Outer)*(uint64(b.Inner)+overhead) + uint64(b.Tail)
}

// SingleBudget converts fine-grained unit requests into countdown
// iteration counts. Call overhead is subtracted from every request, and
// requests small enough to be covered by the overhead alone map to a
// zero countdown so that the caller can return immediately.
type SingleBudget struct {
	// CyclesPerUnit is the loop-cycle cost of one request unit.
	CyclesPerUnit float64

	// OverheadCycles is the call-and-return cost in cycles.
	OverheadCycles uint64

	// MinUnits is the largest request that the call overhead already
	// satisfies on its own.
	MinUnits uint16
}

// DeriveSingle computes the single-loop budget for the given request
// unit at loop frequency f, with the given call-and-return overhead.
func DeriveSingle(
	unit time.Duration,
	f Freq,
	overhead time.Duration,
) (SingleBudget, error) {
	cyclesPerUnit := unit.Seconds() * float64(f)
	if cyclesPerUnit < 1 {
		return SingleBudget{}, ErrTargetTooShort
	}

	overheadCycles := f.Cycles(overhead)

	minUnits := math.Floor(float64(overheadCycles) / cyclesPerUnit)
	if minUnits > math.MaxUint16 {
		return SingleBudget{}, ErrOverheadDominates
	}

	return SingleBudget{
		CyclesPerUnit:  cyclesPerUnit,
		OverheadCycles: overheadCycles,
		MinUnits:       uint16(minUnits),
	}, nil
}

// Iterations returns the countdown length for a request of n units, or
// 0 when the call overhead alone satisfies the request. The returned
// count grows monotonically and continuously with n, so the fast-path
// boundary introduces no jump in the produced delay.
func (b SingleBudget) Iterations(n uint16) uint64 {
	if n <= b.MinUnits {
		return 0
	}

	cycles := uint64(math.Round(float64(n) * b.CyclesPerUnit))
	if cycles <= b.OverheadCycles {
		return 0
	}

	return cycles - b.OverheadCycles
}
