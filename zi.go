package filter

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SteadyStateZi computes the initial state for Linear that corresponds to the
// steady state of the filter's step response: filtering an all-ones signal
// starting from this state yields a constant output equal to the DC gain
// sum(b)/sum(a) from the very first sample, with no transient.
//
// A typical use is scaling the returned state by the first input sample so
// the output starts at the signal level instead of ringing up from zero.
//
// In the state-space view of the transposed direct-form II realization,
// with A the transpose of the companion matrix of a and B = b[1:] - a[1:]*b[0],
// the steady state satisfies zi = A*zi + B; the solver forms (I - A) zi = B
// and solves it exactly. An order-0 filter has an empty state. A singular
// system (marginally stable or unstable filter) returns ErrSingular.
func SteadyStateZi(b, a []float64) ([]float64, error) {
	bn, an, err := normalizeTF(b, a)
	if err != nil {
		return nil, err
	}
	n := max(len(an), len(bn))
	if n < 2 {
		return []float64{}, nil
	}
	bp := padCoeffs(bn, n)
	ap := padCoeffs(an, n)

	m := n - 1
	iMinusA := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			aij := 0.0
			if j == 0 {
				aij = -ap[i+1]
			}
			if j == i+1 {
				aij += 1
			}
			v := -aij
			if i == j {
				v++
			}
			iMinusA.Set(i, j, v)
		}
	}
	rhs := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		rhs.SetVec(i, bp[i+1]-ap[i+1]*bp[0])
	}

	var zi mat.VecDense
	if err := zi.SolveVec(iMinusA, rhs); err != nil {
		// An ill-conditioned but solvable system still produces a state;
		// only (numerical) singularity is fatal.
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
	}
	out := make([]float64, m)
	copy(out, zi.RawVector().Data)
	return out, nil
}

// SOSSteadyStateZi computes per-section steady-state initial conditions for
// SOSFilter, one 2-element state per section. Each section's state is the
// direct-form solve for that section alone, scaled by the product of the DC
// gains sum(b)/sum(a) of all preceding sections, since a downstream section
// sees a steady input already amplified by the upstream cascade.
func SOSSteadyStateZi(sos SOS) ([][2]float64, error) {
	sections, err := normalizeSOS(sos)
	if err != nil {
		return nil, err
	}
	out := make([][2]float64, len(sections))
	scale := 1.0
	for s, sec := range sections {
		zi, err := SteadyStateZi(sec[:3], sec[3:6])
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", s, err)
		}
		out[s] = [2]float64{scale * zi[0], scale * zi[1]}
		scale *= floats.Sum(sec[:3]) / floats.Sum(sec[3:6])
	}
	return out, nil
}

// InitialConditions constructs a Linear initial state that reproduces given
// filter history. y holds the most recent outputs {y[-1], y[-2], ...} and x
// the most recent inputs {x[-1], x[-2], ...}; both are zero-padded when
// shorter than the filter memory (x may be nil for an input history of
// zeros). Filtering new samples starting from the returned state behaves as
// if the historical samples had just passed through the filter.
func InitialConditions(b, a, y, x []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, fmt.Errorf("%w: denominator must have at least one coefficient", ErrCoefficients)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: numerator must have at least one coefficient", ErrCoefficients)
	}
	if a[0] == 0 {
		return nil, fmt.Errorf("%w: first denominator coefficient must be nonzero", ErrCoefficients)
	}
	m := len(b) - 1
	n := len(a) - 1
	k := max(m, n)

	xh := make([]float64, m)
	copy(xh, x)
	yh := make([]float64, n)
	copy(yh, y)

	zi := make([]float64, k)
	for j := 0; j < m; j++ {
		for i := 0; i < m-j; i++ {
			zi[j] += b[j+1+i] * xh[i]
		}
	}
	for j := 0; j < n; j++ {
		for i := 0; i < n-j; i++ {
			zi[j] -= a[j+1+i] * yh[i]
		}
	}
	if a[0] != 1 {
		for j := range zi {
			zi[j] /= a[0]
		}
	}
	return zi, nil
}
