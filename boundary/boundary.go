// Package boundary extends signals past their endpoints along one axis.
// The extensions are used to absorb filter start-up transients: the better
// the chosen extension models the signal outside the observed window, the
// smaller the artifacts a zero-phase filter leaves at the edges.
package boundary

import (
	"fmt"

	"github.com/tphakala/go-digital-filter/narray"
)

// Number is the element-type constraint for signal extension.
type Number interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// Kind selects the extension rule.
type Kind int

const (
	// Odd reflects the signal through its end samples (point symmetry),
	// preserving the slope across the boundary.
	Odd Kind = iota
	// Even mirrors the signal about its end samples.
	Even
	// Constant replicates the end samples.
	Constant
	// None performs no extension.
	None
)

// String returns the name used in option parsing and error messages.
func (k Kind) String() string {
	switch k {
	case Odd:
		return "odd"
	case Even:
		return "even"
	case Constant:
		return "constant"
	case None:
		return "none"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Extend returns x with edge extension samples added at both ends of the
// given axis using the selected rule. Kind None returns a copy of x.
// For Odd and Even the reflection window requires edge < axis length.
func Extend[T Number](x *narray.Array[T], edge, axis int, kind Kind) (*narray.Array[T], error) {
	ax, err := x.Axis(axis)
	if err != nil {
		return nil, err
	}
	if edge < 0 {
		return nil, fmt.Errorf("boundary: extension length must be non-negative, got %d", edge)
	}
	if kind == None || edge == 0 {
		return x.Clone(), nil
	}
	n := x.Shape()[ax]
	if n == 0 {
		return nil, fmt.Errorf("boundary: cannot extend an empty axis")
	}
	if (kind == Odd || kind == Even) && edge > n-1 {
		return nil, fmt.Errorf("boundary: %s extension of length %d needs an axis longer than %d samples, got %d",
			kind, edge, edge, n)
	}

	out := narray.New[T](narray.ShapeWith(x.Shape(), ax, n+2*edge)...)
	src := x.Lanes(ax)
	dst := out.Lanes(ax)
	in := make([]T, n)
	ext := make([]T, n+2*edge)
	for i, lane := range src {
		x.Gather(lane, in)
		extendLane(ext, in, edge, kind)
		out.Scatter(dst[i], ext)
	}
	return out, nil
}

func extendLane[T Number](dst, x []T, edge int, kind Kind) {
	n := len(x)
	copy(dst[edge:], x)
	switch kind {
	case Odd:
		two := T(2)
		for i := 0; i < edge; i++ {
			dst[i] = two*x[0] - x[edge-i]
			dst[edge+n+i] = two*x[n-1] - x[n-2-i]
		}
	case Even:
		for i := 0; i < edge; i++ {
			dst[i] = x[edge-i]
			dst[edge+n+i] = x[n-2-i]
		}
	case Constant:
		for i := 0; i < edge; i++ {
			dst[i] = x[0]
			dst[edge+n+i] = x[n-1]
		}
	}
}

// OddExt extends x by point reflection about its end samples.
func OddExt[T Number](x *narray.Array[T], edge, axis int) (*narray.Array[T], error) {
	return Extend(x, edge, axis, Odd)
}

// EvenExt extends x by mirroring about its end samples.
func EvenExt[T Number](x *narray.Array[T], edge, axis int) (*narray.Array[T], error) {
	return Extend(x, edge, axis, Even)
}

// ConstExt extends x by replicating its end samples.
func ConstExt[T Number](x *narray.Array[T], edge, axis int) (*narray.Array[T], error) {
	return Extend(x, edge, axis, Constant)
}
