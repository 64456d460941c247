package filter

import (
	"fmt"
	"slices"

	"github.com/tphakala/go-digital-filter/narray"
)

// Linear filters x along the given axis with the IIR or FIR filter described
// by the transfer-function coefficients b (numerator) and a (denominator).
// If a[0] is not 1, both vectors are normalized by a[0]; leading zero
// denominator coefficients are trimmed first.
//
// The filter is the direct-form-II-transposed realization of the standard
// difference equation
//
//	a[0]*y[n] = b[0]*x[n] + ... + b[M]*x[n-M]
//	                      - a[1]*y[n-1] - ... - a[N]*y[n-N]
//
// evaluated with the state recursion
//
//	y[n]   = b[0]*x[n] + z[0][n-1]
//	z[k][n] = b[k+1]*x[n] - a[k+1]*y[n] + z[k+1][n-1]
//
// where z is the K = max(M, N) element delay line.
//
// Every axis of x other than the filtering axis is an independent batch
// dimension. The optional initial state zi must have the same rank as x with
// the filtering axis sized at most K (shorter states are zero-extended);
// batch axes must match x or be 1, in which case the state broadcasts.
// A negative axis counts from the last dimension.
//
// The returned final state zf has the filtering axis sized exactly K and is
// non-nil only when zi was supplied; zi itself is never modified, so a state
// buffer can be reused across calls. Splitting a signal and chaining zf into
// zi reproduces the unsplit result exactly.
func Linear[T Number](b, a []T, x *narray.Array[T], axis int, zi *narray.Array[T]) (y, zf *narray.Array[T], err error) {
	bn, an, err := normalizeTF(b, a)
	if err != nil {
		return nil, nil, err
	}
	ax, err := x.Axis(axis)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrShape, err)
	}
	if len(an) == 1 {
		// Pure FIR filter: the recursion degenerates to a convolution,
		// which has dedicated kernels.
		return firFilter(bn, x, ax, zi)
	}

	k := max(len(bn), len(an)) - 1
	bp := padCoeffs(bn, k+1)
	ap := padCoeffs(an, k+1)

	var ziLanes []narray.Lane
	if zi != nil {
		ziLanes, err = stateLanes(zi, x, ax, k)
		if err != nil {
			return nil, nil, err
		}
		zf = narray.New[T](narray.ShapeWith(x.Shape(), ax, k)...)
	}

	y = narray.New[T](x.Shape()...)
	xLanes := x.Lanes(ax)
	yLanes := y.Lanes(ax)
	var zfLanes []narray.Lane
	if zf != nil {
		zfLanes = zf.Lanes(ax)
	}

	n := x.Len(ax)
	if n == 0 {
		// An empty chunk passes the state through unchanged.
		if zf != nil {
			z := make([]T, k)
			for i, lane := range zfLanes {
				clear(z)
				gatherState(zi, ziLanes[i], z)
				zf.Scatter(lane, z)
			}
		}
		return y, zf, nil
	}
	xbuf := make([]T, n)
	ybuf := make([]T, n)
	z := make([]T, k)
	for i, lane := range xLanes {
		x.Gather(lane, xbuf)
		clear(z)
		if zi != nil {
			gatherState(zi, ziLanes[i], z)
		}
		laneDF2T(bp, ap, xbuf, ybuf, z)
		y.Scatter(yLanes[i], ybuf)
		if zf != nil {
			zf.Scatter(zfLanes[i], z)
		}
	}
	return y, zf, nil
}

// laneDF2T runs the transposed direct-form II recursion over one lane.
// b and a must both have length len(z)+1 with a[0] == 1; z is the delay line,
// updated in place to the final state. x and y may alias.
func laneDF2T[T Number](b, a []T, x, y, z []T) {
	k := len(z)
	for n, xn := range x {
		yn := b[0]*xn + z[0]
		for j := 0; j < k-1; j++ {
			z[j] = b[j+1]*xn - a[j+1]*yn + z[j+1]
		}
		z[k-1] = b[k]*xn - a[k]*yn
		y[n] = yn
	}
}

// stateLanes validates the shape of a supplied initial state against the
// signal and returns its lanes in the signal's batch order. The state's
// filtering axis may be shorter than k (it is zero-extended at use), and
// size-1 batch axes broadcast.
func stateLanes[T Number](zi, x *narray.Array[T], ax, k int) ([]narray.Lane, error) {
	expected := narray.ShapeWith(x.Shape(), ax, k)
	if zi.NDim() != x.NDim() {
		return nil, fmt.Errorf("%w: unexpected shape for zi: expected %v, found %v",
			ErrShape, expected, zi.Shape())
	}
	if zi.Len(ax) > k {
		return nil, fmt.Errorf("%w: unexpected shape for zi: expected %v (axis %d at most %d), found %v",
			ErrShape, expected, ax, k, zi.Shape())
	}
	lanes, err := narray.BroadcastLanes(zi, x.Shape(), ax)
	if err != nil {
		return nil, fmt.Errorf("%w: unexpected shape for zi: expected %v, found %v",
			ErrShape, expected, zi.Shape())
	}
	return lanes, nil
}

// gatherState copies a state lane into the front of z, leaving the zero
// extension of a short state untouched.
func gatherState[T Number](zi *narray.Array[T], lane narray.Lane, z []T) {
	off := lane.Offset
	data := zi.Data()
	for i := 0; i < lane.Len; i++ {
		z[i] = data[off]
		off += lane.Stride
	}
}

// filterVec is the 1-D convenience used by the solvers.
func filterVec(b, a, x, zi []float64) ([]float64, error) {
	var ziArr *narray.Array[float64]
	if zi != nil {
		ziArr = narray.FromVector(slices.Clone(zi))
	}
	y, _, err := Linear(b, a, narray.FromVector(x), 0, ziArr)
	if err != nil {
		return nil, err
	}
	return y.Data(), nil
}
