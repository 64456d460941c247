package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-digital-filter/narray"
)

func extend1D(t *testing.T, x []float64, edge int, kind Kind) []float64 {
	t.Helper()
	out, err := Extend(narray.FromVector(x), edge, 0, kind)
	require.NoError(t, err)
	return out.Data()
}

func TestOddExtension(t *testing.T) {
	got := extend1D(t, []float64{1, 2, 3, 4, 5}, 2, Odd)
	assert.Equal(t, []float64{-1, 0, 1, 2, 3, 4, 5, 6, 7}, got)
}

func TestEvenExtension(t *testing.T) {
	got := extend1D(t, []float64{1, 2, 3, 4, 5}, 2, Even)
	assert.Equal(t, []float64{3, 2, 1, 2, 3, 4, 5, 4, 3}, got)
}

func TestConstantExtension(t *testing.T) {
	got := extend1D(t, []float64{1, 2, 3, 4, 5}, 2, Constant)
	assert.Equal(t, []float64{1, 1, 1, 2, 3, 4, 5, 5, 5}, got)
}

func TestNoneReturnsCopy(t *testing.T) {
	x := narray.FromVector([]float64{1, 2, 3})
	out, err := Extend(x, 5, 0, None)
	require.NoError(t, err)
	assert.Equal(t, x.Data(), out.Data())
	out.Set(99, 0)
	assert.Equal(t, 1.0, x.At(0), "None must copy, not alias")
}

func TestZeroEdgeReturnsCopy(t *testing.T) {
	got := extend1D(t, []float64{1, 2, 3}, 0, Odd)
	assert.Equal(t, []float64{1, 2, 3}, got)
}

func TestOddExtensionPreservesSlope(t *testing.T) {
	// Point reflection of a linear ramp continues the ramp.
	got := extend1D(t, []float64{0, 1, 2, 3}, 3, Odd)
	assert.Equal(t, []float64{-3, -2, -1, 0, 1, 2, 3, 4, 5, 6}, got)
}

func TestReflectionNeedsEnoughSamples(t *testing.T) {
	x := narray.FromVector([]float64{1, 2, 3})
	for _, kind := range []Kind{Odd, Even} {
		_, err := Extend(x, 3, 0, kind)
		assert.Error(t, err, "%s with edge == len(x)", kind)
		_, err = Extend(x, 2, 0, kind)
		assert.NoError(t, err, "%s with edge == len(x)-1", kind)
	}
	// Constant replication has no window requirement.
	_, err := Extend(x, 10, 0, Constant)
	assert.NoError(t, err)
}

func TestExtendValidation(t *testing.T) {
	x := narray.FromVector([]float64{1, 2, 3})
	_, err := Extend(x, -1, 0, Odd)
	assert.Error(t, err)
	_, err = Extend(x, 1, 2, Odd)
	assert.Error(t, err, "axis out of range")
	_, err = Extend(narray.FromVector([]float64{}), 1, 0, Constant)
	assert.Error(t, err, "empty axis")
}

func TestExtendAlongAxis(t *testing.T) {
	x, err := narray.FromSlice([]float64{
		1, 2, 3,
		4, 5, 6,
	}, 2, 3)
	require.NoError(t, err)

	// Each row extended independently along axis 1.
	out, err := Extend(x, 1, 1, Even)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5}, out.Shape())
	assert.Equal(t, []float64{
		2, 1, 2, 3, 2,
		5, 4, 5, 6, 5,
	}, out.Data())

	// Each column extended independently along axis 0.
	out, err = Extend(x, 1, 0, Constant)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3}, out.Shape())
	assert.Equal(t, []float64{
		1, 2, 3,
		1, 2, 3,
		4, 5, 6,
		4, 5, 6,
	}, out.Data())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "odd", Odd.String())
	assert.Equal(t, "even", Even.String())
	assert.Equal(t, "constant", Constant.String())
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestShorthandHelpers(t *testing.T) {
	x := narray.FromVector([]float64{1, 2, 3, 4, 5})
	odd, err := OddExt(x, 2, 0)
	require.NoError(t, err)
	even, err := EvenExt(x, 2, 0)
	require.NoError(t, err)
	cons, err := ConstExt(x, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, extend1D(t, x.Data(), 2, Odd), odd.Data())
	assert.Equal(t, extend1D(t, x.Data(), 2, Even), even.Data())
	assert.Equal(t, extend1D(t, x.Data(), 2, Constant), cons.Data())
}
