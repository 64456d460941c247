package filter

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-digital-filter/internal/convolve"
)

// Deconvolve recovers the quotient and remainder of polynomial division by
// inverse filtering, such that
//
//	signal = conv(divisor, quotient) + remainder
//
// where signal is typically a recording and divisor the impulse response
// that shaped it. The divisor's leading coefficient must be nonzero. When
// the divisor is longer than the signal the quotient is empty and the
// remainder is the signal itself.
func Deconvolve(signal, divisor []float64) (quotient, remainder []float64, err error) {
	if len(divisor) == 0 || divisor[0] == 0 {
		return nil, nil, fmt.Errorf("%w: divisor must have a nonzero leading coefficient", ErrCoefficients)
	}
	n := len(signal)
	d := len(divisor)
	if d > n {
		return []float64{}, slices.Clone(signal), nil
	}

	// Filtering a unit impulse with transfer function signal/divisor yields
	// the quotient coefficients one sample at a time.
	impulse := make([]float64, n-d+1)
	impulse[0] = 1
	quotient, _, err = FilterSignal(signal, divisor, impulse, nil)
	if err != nil {
		return nil, nil, err
	}

	conv := make([]float64, n)
	convolve.Full(conv, quotient, divisor)
	remainder = make([]float64, n)
	floats.SubTo(remainder, signal, conv)
	return quotient, remainder, nil
}
