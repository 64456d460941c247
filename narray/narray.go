// Package narray provides a minimal row-major N-dimensional array used by the
// filtering routines to address one axis of a multi-channel signal while
// treating the remaining axes as independent batch dimensions.
//
// The type is intentionally small: shape/stride bookkeeping, per-axis lane
// enumeration, and a few copying transforms (reverse and slice along an
// axis). Heavy numerical work stays in the packages that consume it.
package narray

import (
	"fmt"
	"slices"
)

// Array is a dense row-major N-dimensional array.
type Array[T any] struct {
	data    []T
	shape   []int
	strides []int
}

// Lane describes one 1-D run of elements along an axis: the elements at
// Offset, Offset+Stride, ..., Offset+(Len-1)*Stride in the backing slice.
type Lane struct {
	Offset int
	Stride int
	Len    int
}

// New returns a zero-valued array with the given shape.
// All dimensions must be non-negative; a zero dimension yields an empty array.
func New[T any](shape ...int) *Array[T] {
	size := 1
	for _, d := range shape {
		if d < 0 {
			panic(fmt.Sprintf("narray: negative dimension %d", d))
		}
		size *= d
	}
	return &Array[T]{
		data:    make([]T, size),
		shape:   slices.Clone(shape),
		strides: rowMajorStrides(shape),
	}
}

// FromSlice wraps data in an array with the given shape. The data is used
// directly, not copied; len(data) must equal the product of the dimensions.
func FromSlice[T any](data []T, shape ...int) (*Array[T], error) {
	size := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("narray: negative dimension %d", d)
		}
		size *= d
	}
	if len(data) != size {
		return nil, fmt.Errorf("narray: data length %d does not match shape %v (size %d)",
			len(data), shape, size)
	}
	return &Array[T]{
		data:    data,
		shape:   slices.Clone(shape),
		strides: rowMajorStrides(shape),
	}, nil
}

// FromVector wraps a slice as a 1-D array.
func FromVector[T any](data []T) *Array[T] {
	a, _ := FromSlice(data, len(data))
	return a
}

// FromInts converts integer samples to a 1-D float64 array. It covers the
// common case of promoting PCM-style integer data before filtering.
func FromInts(data []int) *Array[float64] {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return FromVector(out)
}

func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	s := 1
	for d := len(shape) - 1; d >= 0; d-- {
		strides[d] = s
		s *= shape[d]
	}
	return strides
}

// NDim returns the number of dimensions.
func (a *Array[T]) NDim() int { return len(a.shape) }

// Size returns the total number of elements.
func (a *Array[T]) Size() int { return len(a.data) }

// Shape returns a copy of the dimensions.
func (a *Array[T]) Shape() []int { return slices.Clone(a.shape) }

// Len returns the length of the given axis. The axis may be negative,
// counting from the last dimension.
func (a *Array[T]) Len(axis int) int {
	ax, err := a.Axis(axis)
	if err != nil {
		panic(err)
	}
	return a.shape[ax]
}

// Stride returns the element stride of the given (non-negative) axis.
func (a *Array[T]) Stride(axis int) int { return a.strides[axis] }

// Data returns the backing slice in row-major order.
func (a *Array[T]) Data() []T { return a.data }

// Axis normalizes an axis index, accepting negative values that count from
// the last dimension (-1 is the last axis).
func (a *Array[T]) Axis(axis int) (int, error) {
	n := len(a.shape)
	if axis < -n || axis >= n {
		return 0, fmt.Errorf("narray: axis %d out of range for %d dimensions", axis, n)
	}
	if axis < 0 {
		axis += n
	}
	return axis, nil
}

// At returns the element at the given multi-index.
func (a *Array[T]) At(idx ...int) T {
	return a.data[a.offset(idx)]
}

// Set stores v at the given multi-index.
func (a *Array[T]) Set(v T, idx ...int) {
	a.data[a.offset(idx)] = v
}

func (a *Array[T]) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("narray: index rank %d does not match array rank %d", len(idx), len(a.shape)))
	}
	off := 0
	for d, i := range idx {
		if i < 0 || i >= a.shape[d] {
			panic(fmt.Sprintf("narray: index %d out of range for axis %d (len %d)", i, d, a.shape[d]))
		}
		off += i * a.strides[d]
	}
	return off
}

// Clone returns a deep copy.
func (a *Array[T]) Clone() *Array[T] {
	return &Array[T]{
		data:    slices.Clone(a.data),
		shape:   slices.Clone(a.shape),
		strides: slices.Clone(a.strides),
	}
}

// Lanes enumerates every 1-D lane along the given (non-negative) axis.
// Lanes are ordered row-major over the remaining axes, so two arrays with
// the same batch shape enumerate corresponding lanes at the same position.
func (a *Array[T]) Lanes(axis int) []Lane {
	if a.shape[axis] == 0 || len(a.data) == 0 {
		return nil
	}
	count := len(a.data) / a.shape[axis]
	lanes := make([]Lane, 0, count)
	idx := make([]int, len(a.shape))
	for {
		off := 0
		for d := range idx {
			off += idx[d] * a.strides[d]
		}
		lanes = append(lanes, Lane{Offset: off, Stride: a.strides[axis], Len: a.shape[axis]})
		if !a.incBatch(idx, axis) {
			return lanes
		}
	}
}

// incBatch advances a multi-index over every axis except the given one,
// odometer style. It reports whether the index wrapped around.
func (a *Array[T]) incBatch(idx []int, axis int) bool {
	for d := len(a.shape) - 1; d >= 0; d-- {
		if d == axis {
			continue
		}
		idx[d]++
		if idx[d] < a.shape[d] {
			return true
		}
		idx[d] = 0
	}
	return false
}

// BroadcastLanes enumerates lanes of a along axis in the batch order defined
// by ref (a reference shape of the same rank). Batch axes where a has size 1
// but ref is larger are broadcast: the same lane repeats. The lane order
// matches Lanes(axis) on an array of shape ref, so the two can be iterated in
// lockstep. The length of a's own axis is unconstrained here; batch axes must
// match ref or be 1.
func BroadcastLanes[T any](a *Array[T], ref []int, axis int) ([]Lane, error) {
	if len(ref) != len(a.shape) {
		return nil, fmt.Errorf("narray: rank %d does not match reference rank %d", len(a.shape), len(ref))
	}
	count := 1
	for d, n := range ref {
		if d == axis {
			continue
		}
		if a.shape[d] != n && a.shape[d] != 1 {
			return nil, fmt.Errorf("narray: axis %d has size %d, cannot broadcast against %d",
				d, a.shape[d], n)
		}
		count *= n
	}
	lanes := make([]Lane, 0, count)
	idx := make([]int, len(ref))
	for {
		off := 0
		for d := range idx {
			if d == axis {
				continue
			}
			if a.shape[d] != 1 {
				off += idx[d] * a.strides[d]
			}
		}
		lanes = append(lanes, Lane{Offset: off, Stride: a.strides[axis], Len: a.shape[axis]})

		carry := true
		for d := len(ref) - 1; d >= 0; d-- {
			if d == axis {
				continue
			}
			idx[d]++
			if idx[d] < ref[d] {
				carry = false
				break
			}
			idx[d] = 0
		}
		if carry {
			return lanes, nil
		}
	}
}

// Gather copies the elements of a lane into dst, which must have length
// lane.Len.
func (a *Array[T]) Gather(lane Lane, dst []T) {
	off := lane.Offset
	for i := 0; i < lane.Len; i++ {
		dst[i] = a.data[off]
		off += lane.Stride
	}
}

// Scatter copies src into the elements of a lane.
func (a *Array[T]) Scatter(lane Lane, src []T) {
	off := lane.Offset
	for i := 0; i < lane.Len; i++ {
		a.data[off] = src[i]
		off += lane.Stride
	}
}

// ReverseAxis returns a copy with the given axis reversed.
func (a *Array[T]) ReverseAxis(axis int) *Array[T] {
	ax, err := a.Axis(axis)
	if err != nil {
		panic(err)
	}
	out := New[T](a.shape...)
	n := a.shape[ax]
	src := a.Lanes(ax)
	dst := out.Lanes(ax)
	buf := make([]T, n)
	for i, lane := range src {
		a.Gather(lane, buf)
		for l, r := 0, n-1; l < r; l, r = l+1, r-1 {
			buf[l], buf[r] = buf[r], buf[l]
		}
		out.Scatter(dst[i], buf)
	}
	return out
}

// SliceAxis returns a copy restricted to [start, stop) along the given axis.
func (a *Array[T]) SliceAxis(axis, start, stop int) *Array[T] {
	ax, err := a.Axis(axis)
	if err != nil {
		panic(err)
	}
	n := a.shape[ax]
	if start < 0 || stop > n || start > stop {
		panic(fmt.Sprintf("narray: slice [%d:%d) out of range for axis length %d", start, stop, n))
	}
	out := New[T](ShapeWith(a.shape, ax, stop-start)...)
	src := a.Lanes(ax)
	dst := out.Lanes(ax)
	buf := make([]T, n)
	cut := make([]T, stop-start)
	for i, lane := range src {
		a.Gather(lane, buf)
		copy(cut, buf[start:stop])
		out.Scatter(dst[i], cut)
	}
	return out
}

// ShapeWith returns a copy of shape with the given (non-negative) axis
// replaced by n.
func ShapeWith(shape []int, axis, n int) []int {
	out := slices.Clone(shape)
	out[axis] = n
	return out
}

// SameShape reports whether two shapes are identical.
func SameShape(a, b []int) bool {
	return slices.Equal(a, b)
}
