package filter

import "errors"

// Sentinel errors. Validation failures (coefficients, shapes, padding) are
// detected before any recursion runs, so a failed call never returns partial
// output or mutates caller state. ErrSingular is the one numerical failure
// mode: a marginally or non-stable filter has no steady state to solve for.
var (
	// ErrCoefficients reports malformed filter coefficients: empty vectors,
	// an all-zero denominator, or a zero leading denominator coefficient
	// after trimming.
	ErrCoefficients = errors.New("filter: invalid coefficients")

	// ErrShape reports a state or section array whose shape does not match
	// the signal it is applied to.
	ErrShape = errors.New("filter: shape mismatch")

	// ErrPadding reports an unknown padding kind or method, or a pad length
	// incompatible with the signal length.
	ErrPadding = errors.New("filter: invalid padding")

	// ErrSingular reports a singular steady-state system, which occurs only
	// for marginally stable or unstable filters.
	ErrSingular = errors.New("filter: singular steady-state system")
)
