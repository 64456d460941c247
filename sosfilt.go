package filter

import (
	"fmt"

	"github.com/tphakala/go-digital-filter/narray"
)

// SOSFilter filters x along the given axis with a cascade of second-order
// sections. Each section is a transposed direct-form II biquad; section s
// feeds section s+1. The cascade is mathematically equivalent to a single
// high-order direct-form filter but accumulates far less rounding error, so
// it should be preferred for high filter orders.
//
// The optional initial state zi must have shape (n_sections, ..., 2, ...),
// that is, the shape of x with the filtering axis replaced by 2, prepended
// by the section count. Unlike Linear, no broadcasting is applied: the shape must
// match exactly. The final state zf has the same shape and is returned only
// when zi was supplied. zi is never modified.
func SOSFilter[T Number](sos [][6]T, x *narray.Array[T], axis int, zi *narray.Array[T]) (y, zf *narray.Array[T], err error) {
	sections, err := normalizeSOS(sos)
	if err != nil {
		return nil, nil, err
	}
	ax, err := x.Axis(axis)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrShape, err)
	}
	nSections := len(sections)

	expected := append([]int{nSections}, narray.ShapeWith(x.Shape(), ax, 2)...)
	var zfLanes []narray.Lane
	if zi != nil {
		if !narray.SameShape(zi.Shape(), expected) {
			return nil, nil, fmt.Errorf(
				"%w: invalid zi shape: with axis %d, an input with shape %v and %d sections, zi must have shape %v, got %v",
				ErrShape, axis, x.Shape(), nSections, expected, zi.Shape())
		}
		zf = zi.Clone()
		zfLanes = zf.Lanes(ax + 1)
	}

	// Per-section coefficient slices for the lane recursion.
	bs := make([][]T, nSections)
	as := make([][]T, nSections)
	for s, sec := range sections {
		bs[s] = []T{sec[0], sec[1], sec[2]}
		as[s] = []T{sec[3], sec[4], sec[5]}
	}

	y = x.Clone()
	yLanes := y.Lanes(ax)
	batch := len(yLanes)
	n := x.Len(ax)
	buf := make([]T, n)
	z := make([]T, 2)
	for i, lane := range yLanes {
		y.Gather(lane, buf)
		for s := 0; s < nSections; s++ {
			if zf != nil {
				// Lanes along the state axis enumerate section-major, so
				// section s of batch lane i sits at s*batch+i.
				zf.Gather(zfLanes[s*batch+i], z)
			} else {
				clear(z)
			}
			laneDF2T(bs[s], as[s], buf, buf, z)
			if zf != nil {
				zf.Scatter(zfLanes[s*batch+i], z)
			}
		}
		y.Scatter(lane, buf)
	}
	return y, zf, nil
}
