package filter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tphakala/go-digital-filter/narray"
)

// FiltFiltGust applies the filter (b, a) forward and backward along the
// given axis using Gustafsson's method: the initial conditions of the two
// passes are chosen so that filtering forward-then-backward gives exactly
// the same result as filtering backward-then-forward, with no signal
// padding at all.
//
// The method builds the filter's observability matrix (the operator mapping
// an initial state to the zero-input output response) and the matrix that
// refilters the row-reversed response, then solves a least-squares system
// for the optimal forward and backward states from the difference between
// the two naive (zero-state) pass orders. Rank-deficient systems, which
// arise for nearly unstable filters, degrade to the minimum-norm solution
// rather than failing.
//
// irlen truncates the portion of the impulse response considered to that
// many samples; it engages only when the signal is longer than 2*irlen and
// then restricts the correction to the first and last irlen samples, which
// is much faster for long signals. irlen <= 0 means no truncation.
//
// Besides the filtered signal, the optimal forward state x0 and backward
// state x1 are returned (the filtering axis replaced by the filter order);
// they are primarily useful for verification.
//
// Reference: F. Gustafsson, "Determining the initial states in
// forward-backward filtering", IEEE Transactions on Signal Processing,
// 46(4):988-992, 1996.
func FiltFiltGust(b, a []float64, x *narray.Array[float64], axis, irlen int) (y, x0, x1 *narray.Array[float64], err error) {
	if len(b) == 0 || len(a) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: coefficient vectors must not be empty", ErrCoefficients)
	}
	ax, err := x.Axis(axis)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrShape, err)
	}

	order := max(len(b), len(a)) - 1
	if order == 0 {
		// Pure scalar gain applied twice; no state to solve for.
		if a[0] == 0 {
			return nil, nil, nil, fmt.Errorf("%w: must have a nonzero denominator coefficient", ErrCoefficients)
		}
		g := b[0] / a[0]
		y = x.Clone()
		floats.Scale(g*g, y.Data())
		empty := narray.New[float64](narray.ShapeWith(x.Shape(), ax, 0)...)
		return y, empty, empty.Clone(), nil
	}

	n := x.Len(ax)
	if n == 0 {
		return nil, nil, nil, fmt.Errorf("%w: cannot filter an empty axis", ErrShape)
	}
	m := n
	if irlen > 0 && n > 2*irlen {
		m = irlen
	}

	// Observability matrix: column k is the zero-input response to the k-th
	// unit initial state. The recursion is shift-invariant in the state
	// index, so later columns are delayed copies of column 0.
	unit := make([]float64, order)
	unit[0] = 1
	col0, err := filterVec(b, a, make([]float64, m), unit)
	if err != nil {
		return nil, nil, nil, err
	}
	obs := mat.NewDense(m, order, nil)
	for i := 0; i < m; i++ {
		obs.Set(i, 0, col0[i])
	}
	for k := 1; k < order; k++ {
		for i := k; i < m; i++ {
			obs.Set(i, k, col0[i-k])
		}
	}
	obsR := rowReversed(obs)

	// S applies the filter to the reversed propagated initial conditions:
	// S*zi is the second pass over the time-reversed zero-input response.
	s := mat.NewDense(m, order, nil)
	col := make([]float64, m)
	for k := 0; k < order; k++ {
		mat.Col(col, k, obsR)
		filtered, err := filterVec(b, a, col, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		s.SetCol(k, filtered)
	}
	sR := rowReversed(s)

	// The system matrix [(S^R - Obs), (Obs^R - S)], block-diagonal when the
	// impulse response is truncated to a window shorter than the signal.
	truncated := m < n
	rows := m
	if truncated {
		rows = 2 * m
	}
	sys := mat.NewDense(rows, 2*order, nil)
	w := mat.NewDense(rows, 2*order, nil)
	for i := 0; i < m; i++ {
		bottom := i
		if truncated {
			bottom = m + i
		}
		for j := 0; j < order; j++ {
			sys.Set(i, j, sR.At(i, j)-obs.At(i, j))
			sys.Set(bottom, order+j, obsR.At(i, j)-s.At(i, j))
			w.Set(i, j, sR.At(i, j))
			w.Set(bottom, order+j, obsR.At(i, j))
		}
	}

	// Naive passes from zero state in both orders. Their difference is the
	// right-hand side the optimal initial conditions must account for.
	yF, _, err := Linear(b, a, x, ax, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	yFB, _, err := Linear(b, a, yF.ReverseAxis(ax), ax, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	yFB = yFB.ReverseAxis(ax)

	yB, _, err := Linear(b, a, x.ReverseAxis(ax), ax, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	yBF, _, err := Linear(b, a, yB.ReverseAxis(ax), ax, nil)
	if err != nil {
		return nil, nil, nil, err
	}

	fbLanes := yFB.Lanes(ax)
	bfLanes := yBF.Lanes(ax)
	batch := len(fbLanes)
	rhs := mat.NewDense(rows, batch, nil)
	fb := make([]float64, n)
	bf := make([]float64, n)
	for i := range fbLanes {
		yFB.Gather(fbLanes[i], fb)
		yBF.Gather(bfLanes[i], bf)
		if truncated {
			for j := 0; j < m; j++ {
				rhs.Set(j, i, bf[j]-fb[j])
				rhs.Set(m+j, i, bf[n-m+j]-fb[n-m+j])
			}
		} else {
			for j := 0; j < n; j++ {
				rhs.Set(j, i, bf[j]-fb[j])
			}
		}
	}

	// One SVD factorization serves every batch lane; the minimum-norm
	// solve absorbs rank deficiency instead of failing.
	var svd mat.SVD
	if ok := svd.Factorize(sys, mat.SVDThin); !ok {
		return nil, nil, nil, fmt.Errorf("%w: least-squares factorization did not converge", ErrSingular)
	}
	var ic mat.Dense
	if rank := effectiveRank(&svd, rows, 2*order); rank > 0 {
		svd.SolveTo(&ic, rhs, rank)
	} else {
		// All singular values are zero: the system carries no
		// correction and the minimum-norm solution is zero.
		ic.ReuseAs(2*order, batch)
	}

	y = yFB.Clone()
	x0 = narray.New[float64](narray.ShapeWith(x.Shape(), ax, order)...)
	x1 = narray.New[float64](narray.ShapeWith(x.Shape(), ax, order)...)
	yLanes := y.Lanes(ax)
	x0Lanes := x0.Lanes(ax)
	x1Lanes := x1.Lanes(ax)

	icVec := mat.NewVecDense(2*order, nil)
	var wic mat.VecDense
	ybuf := make([]float64, n)
	for i := range yLanes {
		for j := 0; j < 2*order; j++ {
			icVec.SetVec(j, ic.At(j, i))
		}
		wic.MulVec(w, icVec)
		y.Gather(yLanes[i], ybuf)
		if truncated {
			for j := 0; j < m; j++ {
				ybuf[j] += wic.AtVec(j)
				ybuf[n-m+j] += wic.AtVec(m + j)
			}
		} else {
			for j := 0; j < n; j++ {
				ybuf[j] += wic.AtVec(j)
			}
		}
		y.Scatter(yLanes[i], ybuf)
		x0.Scatter(x0Lanes[i], icVec.RawVector().Data[:order])
		x1.Scatter(x1Lanes[i], icVec.RawVector().Data[order:])
	}
	return y, x0, x1, nil
}

// rowReversed returns a copy of M with its rows in reverse order.
func rowReversed(src *mat.Dense) *mat.Dense {
	r, c := src.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, src.At(r-1-i, j))
		}
	}
	return out
}

// effectiveRank counts singular values above the conventional numerical
// tolerance eps * max(rows, cols) * sigma_max.
func effectiveRank(svd *mat.SVD, rows, cols int) int {
	values := svd.Values(nil)
	if len(values) == 0 || values[0] == 0 {
		return 0
	}
	tol := math.Ldexp(1, -52) * float64(max(rows, cols)) * values[0]
	rank := 0
	for _, v := range values {
		if v > tol {
			rank++
		}
	}
	return rank
}
