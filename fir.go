package filter

import (
	"fmt"

	"github.com/tphakala/go-digital-filter/internal/convolve"
	"github.com/tphakala/go-digital-filter/narray"
)

// firFilter handles the a == [1] case of Linear via full convolution. The
// state of a pure FIR filter is the trailing overlap of the convolution:
// with out = conv(b, x), the output is out[:n] with the supplied state added
// to the first K samples, and the final state is out[n:].
func firFilter[T Number](b []T, x *narray.Array[T], ax int, zi *narray.Array[T]) (y, zf *narray.Array[T], err error) {
	k := len(b) - 1
	n := x.Len(ax)

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

	if n == 0 {
		// An empty chunk passes the state through unchanged.
		if zf != nil {
			state := make([]T, k)
			for i, lane := range zfLanes {
				clear(state)
				gatherState(zi, ziLanes[i], state)
				zf.Scatter(lane, state)
			}
		}
		return y, zf, nil
	}

	conv := newConvolver(b)
	xbuf := make([]T, n)
	outFull := make([]T, n+k)
	state := make([]T, k)
	for i, lane := range xLanes {
		x.Gather(lane, xbuf)
		conv(outFull, xbuf)
		if zi != nil {
			clear(state)
			gatherState(zi, ziLanes[i], state)
			for j := range state {
				outFull[j] += state[j]
			}
		}
		y.Scatter(yLanes[i], outFull[:n])
		if zf != nil && k > 0 {
			zf.Scatter(zfLanes[i], outFull[n:])
		}
	}
	return y, zf, nil
}

// newConvolver picks the convolution kernel for the element type and kernel
// length: SIMD direct or FFT overlap-save for float64, scalar otherwise.
// The FFT plan is built once and shared across batch lanes.
func newConvolver[T Number](b []T) func(dst, x []T) {
	if bf, ok := any(b).([]float64); ok {
		if len(bf) >= convolve.FFTThreshold {
			plan := convolve.NewFFT(bf)
			return func(dst, x []T) {
				plan.Full(any(dst).([]float64), any(x).([]float64))
			}
		}
		return func(dst, x []T) {
			convolve.Direct(any(dst).([]float64), any(x).([]float64), bf)
		}
	}
	return func(dst, x []T) {
		convolve.FullGeneric(dst, x, b)
	}
}

// Ring is the element contract for the opaque-type FIR path: any type closed
// under addition and multiplication. This is the only entry point that
// accepts non-IEEE numeric elements; the recursive paths require a Number.
type Ring[T any] interface {
	Add(T) T
	Mul(T) T
}

// FIRRing filters a 1-D signal with the FIR filter b over an arbitrary ring
// element type. The supplied initial state zi (length at most len(b)-1,
// zero-extended conceptually: missing entries contribute nothing) is added to
// the leading output samples; the returned zf is the trailing convolution
// overlap, resuming exactly like the float paths.
func FIRRing[T Ring[T]](b, x, zi []T) (y, zf []T, err error) {
	if len(b) == 0 {
		return nil, nil, fmt.Errorf("%w: numerator must have at least one coefficient", ErrCoefficients)
	}
	k := len(b) - 1
	if len(zi) > k {
		return nil, nil, fmt.Errorf("%w: unexpected length for zi: expected at most %d, found %d",
			ErrShape, k, len(zi))
	}
	if len(x) == 0 && k > 0 {
		return nil, nil, fmt.Errorf("%w: input must not be empty for a stateful generic filter", ErrShape)
	}

	outFull := make([]T, len(x)+k)
	set := make([]bool, len(x)+k)
	for n, xn := range x {
		for j, bj := range b {
			term := bj.Mul(xn)
			if set[n+j] {
				outFull[n+j] = outFull[n+j].Add(term)
			} else {
				outFull[n+j] = term
				set[n+j] = true
			}
		}
	}
	for j, zj := range zi {
		if set[j] {
			outFull[j] = outFull[j].Add(zj)
		} else {
			outFull[j] = zj
			set[j] = true
		}
	}
	return outFull[:len(x)], outFull[len(x):], nil
}
