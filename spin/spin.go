// Package spin provides the countdown kernel shared by the delay
// primitives and the calibration measurements. Both must run the exact
// same loop body, otherwise the measured loop frequency does not
// describe the loop that the primitives execute.
package spin

// Wait runs an n-step countdown and returns. The countdown body is the
// unit of cost that calibration measures; one step is one loop cycle.
//
// The function must not be inlined. Inlining would let the compiler
// fold the countdown into the caller and change its per-step cost, and
// the call-and-return overhead that calibration charges against short
// requests would disappear.
//
//go:noinline
func Wait(n uint64) {
	for i := n; i > 0; i-- {
	}
}
