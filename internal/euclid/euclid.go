package euclid

import (
	"errors"
	"fmt"
)

// Step is one iteration of the Euclidean algorithm: Dividend = q*Divisor + Remainder.
type Step struct {
	Dividend  int64
	Divisor   int64
	Remainder int64
}

// Quotient returns the integer quotient of the step.
func (s Step) Quotient() int64 {
	return s.Dividend / s.Divisor
}

// String renders the step as "120 % 45 = 30".
func (s Step) String() string {
	return fmt.Sprintf("%d %% %d = %d", s.Dividend, s.Divisor, s.Remainder)
}

// Trace is the full record of one GCD calculation.
type Trace struct {
	// A and B are the operands as entered.
	A, B int64
	// Steps holds every iteration in order; the last one has a zero remainder.
	Steps []Step
	// GCD is the divisor of the last step.
	GCD int64
}

// Compute runs the Euclidean algorithm on a and b and records every step.
//
// Both operands must be positive; callers validate with ParseOperands first.
// The number of steps is O(log(min(a, b))).
//
// Parameters:
//   - a: The first operand (dividend of the first step).
//   - b: The second operand (divisor of the first step).
//
// Returns:
//   - Trace: The ordered steps and the greatest common divisor.
func Compute(a, b int64) Trace {
	x, y := a, b
	r := x % y
	steps := []Step{{Dividend: x, Divisor: y, Remainder: r}}
	for r != 0 {
		x, y = y, r
		r = x % y
		steps = append(steps, Step{Dividend: x, Divisor: y, Remainder: r})
	}
	return Trace{A: a, B: b, Steps: steps, GCD: y}
}

// Last returns the final step of the trace.
func (t Trace) Last() Step {
	return t.Steps[len(t.Steps)-1]
}

// Errors returned by Verify.
var (
	ErrEmptyTrace      = errors.New("trace has no steps")
	ErrBadRemainder    = errors.New("remainder is not dividend mod divisor")
	ErrNotTerminated   = errors.New("last remainder is not zero")
	ErrEarlyZero       = errors.New("zero remainder before the last step")
	ErrBrokenChain     = errors.New("step does not continue from the previous one")
	ErrGCDMismatch     = errors.New("gcd differs from the last divisor")
	ErrOperandMismatch = errors.New("first step does not start from the operands")
)

// Verify checks every structural invariant of the trace and reports the first
// violation, wrapped with the index of the offending step.
func (t Trace) Verify() error {
	if len(t.Steps) == 0 {
		return ErrEmptyTrace
	}
	first := t.Steps[0]
	if first.Dividend != t.A || first.Divisor != t.B {
		return ErrOperandMismatch
	}
	for i, s := range t.Steps {
		if s.Divisor <= 0 || s.Remainder < 0 || s.Remainder >= s.Divisor || s.Dividend%s.Divisor != s.Remainder {
			return fmt.Errorf("step %d: %w", i+1, ErrBadRemainder)
		}
		if s.Remainder == 0 && i != len(t.Steps)-1 {
			return fmt.Errorf("step %d: %w", i+1, ErrEarlyZero)
		}
		if i > 0 {
			prev := t.Steps[i-1]
			if s.Dividend != prev.Divisor || s.Divisor != prev.Remainder {
				return fmt.Errorf("step %d: %w", i+1, ErrBrokenChain)
			}
		}
	}
	last := t.Last()
	if last.Remainder != 0 {
		return ErrNotTerminated
	}
	if t.GCD != last.Divisor {
		return ErrGCDMismatch
	}
	return nil
}
