package narray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, a.NDim())
	assert.Equal(t, []int{2, 3}, a.Shape())
	assert.Equal(t, 6, a.Size())
	assert.Equal(t, 2, a.Len(0))
	assert.Equal(t, 3, a.Len(-1))

	_, err = FromSlice([]float64{1, 2, 3}, 2, 2)
	assert.Error(t, err)
	_, err = FromSlice([]float64{}, -1)
	assert.Error(t, err)
}

func TestAtSetRowMajor(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.At(0, 0))
	assert.Equal(t, 3.0, a.At(0, 2))
	assert.Equal(t, 4.0, a.At(1, 0))
	assert.Equal(t, 6.0, a.At(1, 2))

	a.Set(42, 1, 1)
	assert.Equal(t, 42.0, a.At(1, 1))
	assert.Equal(t, 42.0, a.Data()[4])
}

func TestAxisNormalization(t *testing.T) {
	a := New[float64](2, 3, 4)
	for axis, want := range map[int]int{0: 0, 2: 2, -1: 2, -3: 0} {
		got, err := a.Axis(axis)
		require.NoError(t, err)
		assert.Equal(t, want, got, "axis %d", axis)
	}
	_, err := a.Axis(3)
	assert.Error(t, err)
	_, err = a.Axis(-4)
	assert.Error(t, err)
}

func TestLanes(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)

	rows := a.Lanes(1)
	require.Len(t, rows, 2)
	assert.Equal(t, Lane{Offset: 0, Stride: 1, Len: 3}, rows[0])
	assert.Equal(t, Lane{Offset: 3, Stride: 1, Len: 3}, rows[1])

	cols := a.Lanes(0)
	require.Len(t, cols, 3)
	assert.Equal(t, Lane{Offset: 0, Stride: 3, Len: 2}, cols[0])
	assert.Equal(t, Lane{Offset: 1, Stride: 3, Len: 2}, cols[1])
	assert.Equal(t, Lane{Offset: 2, Stride: 3, Len: 2}, cols[2])

	buf := make([]float64, 2)
	a.Gather(cols[1], buf)
	assert.Equal(t, []float64{2, 5}, buf)
}

func TestLanesBatchOrderMatchesAcrossArrays(t *testing.T) {
	// Two arrays that share batch shape but differ along the lane axis must
	// enumerate corresponding lanes at the same position.
	a := New[float64](2, 5, 3)
	b := New[float64](2, 1, 3)
	la := a.Lanes(1)
	lb := b.Lanes(1)
	require.Len(t, la, 6)
	require.Len(t, lb, 6)
	for i := range la {
		assert.Equal(t, la[i].Offset%3, lb[i].Offset%3, "lane %d", i)
	}
}

func TestGatherScatterRoundTrip(t *testing.T) {
	a := New[float64](3, 4)
	lane := a.Lanes(0)[2]
	a.Scatter(lane, []float64{7, 8, 9})
	got := make([]float64, 3)
	a.Gather(lane, got)
	assert.Equal(t, []float64{7, 8, 9}, got)
	assert.Equal(t, 8.0, a.At(1, 2))
}

func TestBroadcastLanes(t *testing.T) {
	// zi-style array with a singleton batch axis, broadcast over ref rows.
	b, err := FromSlice([]float64{10, 20}, 1, 2)
	require.NoError(t, err)
	lanes, err := BroadcastLanes(b, []int{3, 5}, 1)
	require.NoError(t, err)
	require.Len(t, lanes, 3)
	buf := make([]float64, 2)
	for _, lane := range lanes {
		b.Gather(lane, buf)
		assert.Equal(t, []float64{10, 20}, buf)
	}

	// A full-size batch axis is walked, not repeated.
	c, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 3, 2)
	require.NoError(t, err)
	lanes, err = BroadcastLanes(c, []int{3, 5}, 1)
	require.NoError(t, err)
	require.Len(t, lanes, 3)
	c.Gather(lanes[2], buf)
	assert.Equal(t, []float64{5, 6}, buf)

	// Batch axis that neither matches nor is 1.
	d := New[float64](2, 2)
	_, err = BroadcastLanes(d, []int{3, 5}, 1)
	assert.Error(t, err)

	// Rank mismatch.
	_, err = BroadcastLanes(FromVector([]float64{1}), []int{3, 5}, 1)
	assert.Error(t, err)
}

func TestReverseAxis(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)

	r1 := a.ReverseAxis(1)
	assert.Equal(t, []float64{3, 2, 1, 6, 5, 4}, r1.Data())

	r0 := a.ReverseAxis(0)
	assert.Equal(t, []float64{4, 5, 6, 1, 2, 3}, r0.Data())

	// The source is untouched.
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, a.Data())
}

func TestSliceAxis(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	s := a.SliceAxis(1, 1, 3)
	assert.Equal(t, []int{2, 2}, s.Shape())
	assert.Equal(t, []float64{2, 3, 5, 6}, s.Data())

	empty := a.SliceAxis(1, 1, 1)
	assert.Equal(t, []int{2, 0}, empty.Shape())
	assert.Empty(t, empty.Data())
}

func TestFromInts(t *testing.T) {
	a := FromInts([]int{-3, 0, 7})
	assert.Equal(t, []int{3}, a.Shape())
	assert.Equal(t, []float64{-3, 0, 7}, a.Data())
}

func TestCloneIsIndependent(t *testing.T) {
	a := FromVector([]float64{1, 2, 3})
	c := a.Clone()
	c.Set(99, 0)
	assert.Equal(t, 1.0, a.At(0))
	assert.Equal(t, 99.0, c.At(0))
}

func TestShapeWith(t *testing.T) {
	shape := []int{2, 3, 4}
	assert.Equal(t, []int{2, 7, 4}, ShapeWith(shape, 1, 7))
	assert.Equal(t, []int{2, 3, 4}, shape, "input must not be modified")
	assert.True(t, SameShape([]int{2, 3}, []int{2, 3}))
	assert.False(t, SameShape([]int{2, 3}, []int{3, 2}))
}
