package filter

import (
	"fmt"
	"slices"
)

// Number constrains the element types the filtering recursion supports.
// Integer and boolean samples must be converted by the caller (see
// narray.FromInts); element types outside this set are rejected at compile
// time, except through the FIR-only [FIRRing] escape path.
type Number interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// SOS is an ordered cascade of second-order sections. Each row holds the
// six coefficients (b0, b1, b2, a0, a1, a2) of one section; rows are applied
// in order, section 0 first.
type SOS = [][6]float64

// normalizeTF validates a transfer function and returns copies of b and a
// with leading zero denominator coefficients trimmed and both vectors scaled
// so that a[0] == 1.
func normalizeTF[T Number](b, a []T) ([]T, []T, error) {
	if len(b) == 0 {
		return nil, nil, fmt.Errorf("%w: numerator must have at least one coefficient", ErrCoefficients)
	}
	if len(a) == 0 {
		return nil, nil, fmt.Errorf("%w: denominator must have at least one coefficient", ErrCoefficients)
	}
	var zero T
	for len(a) > 0 && a[0] == zero {
		a = a[1:]
	}
	if len(a) == 0 {
		return nil, nil, fmt.Errorf("%w: must have a nonzero denominator coefficient", ErrCoefficients)
	}
	bn := slices.Clone(b)
	an := slices.Clone(a)
	if a0 := an[0]; a0 != 1 {
		for i := range bn {
			bn[i] /= a0
		}
		for i := range an {
			an[i] /= a0
		}
	}
	return bn, an, nil
}

// normalizeSOS validates a section array and returns a copy with every
// section scaled so that its a0 coefficient is 1.
func normalizeSOS[T Number](sos [][6]T) ([][6]T, error) {
	if len(sos) == 0 {
		return nil, fmt.Errorf("%w: sos must have at least one section", ErrCoefficients)
	}
	out := make([][6]T, len(sos))
	var zero T
	for s, sec := range sos {
		a0 := sec[3]
		if a0 == zero {
			return nil, fmt.Errorf("%w: section %d has a zero a0 coefficient", ErrCoefficients, s)
		}
		if a0 != 1 {
			for i := range sec {
				sec[i] /= a0
			}
		}
		out[s] = sec
	}
	return out, nil
}

// padCoeffs returns c zero-extended to length n.
func padCoeffs[T Number](c []T, n int) []T {
	if len(c) >= n {
		return c
	}
	out := make([]T, n)
	copy(out, c)
	return out
}
