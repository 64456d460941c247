package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-digital-filter/internal/testutil"
	"github.com/tphakala/go-digital-filter/narray"
)

// Stable second-order sections used across the cascade tests.
var (
	testSection1 = [6]float64{butter2B[0], butter2B[1], butter2B[2], butter2A[0], butter2A[1], butter2A[2]}
	testSection2 = [6]float64{0.5, 0.3, 0.1, 1, -0.2, 0.08}
)

// polyMul multiplies two polynomial coefficient vectors.
func polyMul(p, q []float64) []float64 {
	out := make([]float64, len(p)+len(q)-1)
	for i, pi := range p {
		for j, qj := range q {
			out[i+j] += pi * qj
		}
	}
	return out
}

func TestSOSFilterSingleSectionMatchesLinear(t *testing.T) {
	x := testutil.RandomSignal(80)
	want, _, err := FilterSignal(butter2B, butter2A, x, nil)
	require.NoError(t, err)
	got, _, err := SOSFilterSignal(SOS{testSection1}, x, nil)
	require.NoError(t, err)
	testutil.AssertAllClose(t, want, got, testutil.DefaultTolerance)
}

func TestSOSFilterMatchesDirectForm(t *testing.T) {
	// A cascade is the product of its sections' transfer functions.
	x := testutil.RandomSignal(100)
	b := polyMul(testSection1[:3], testSection2[:3])
	a := polyMul(testSection1[3:], testSection2[3:])

	want, _, err := FilterSignal(b, a, x, nil)
	require.NoError(t, err)
	got, _, err := SOSFilterSignal(SOS{testSection1, testSection2}, x, nil)
	require.NoError(t, err)
	testutil.AssertAllClose(t, want, got, testutil.DefaultTolerance)
}

func TestSOSFilterSectionOrderIsIrrelevant(t *testing.T) {
	x := testutil.RandomSignal(60)
	y12, _, err := SOSFilterSignal(SOS{testSection1, testSection2}, x, nil)
	require.NoError(t, err)
	y21, _, err := SOSFilterSignal(SOS{testSection2, testSection1}, x, nil)
	require.NoError(t, err)
	testutil.AssertAllClose(t, y12, y21, testutil.DefaultTolerance)
}

func TestSOSFilterNormalizesByA0(t *testing.T) {
	x := testutil.RandomSignal(50)
	scaled := testSection2
	for i := range scaled {
		scaled[i] *= 2
	}
	want, _, err := SOSFilterSignal(SOS{testSection2}, x, nil)
	require.NoError(t, err)
	got, _, err := SOSFilterSignal(SOS{scaled}, x, nil)
	require.NoError(t, err)
	testutil.AssertAllClose(t, want, got, testutil.DefaultTolerance)
}

func TestSOSFilterResumability(t *testing.T) {
	sos := SOS{testSection1, testSection2}
	x := testutil.RandomSignal(70)
	const split = 29

	zeroState := make([][2]float64, len(sos))
	yFull, zfFull, err := SOSFilterSignal(sos, x, zeroState)
	require.NoError(t, err)
	y1, zf1, err := SOSFilterSignal(sos, x[:split], zeroState)
	require.NoError(t, err)
	y2, zf2, err := SOSFilterSignal(sos, x[split:], zf1)
	require.NoError(t, err)

	testutil.AssertAllClose(t, yFull[:split], y1, testutil.DefaultTolerance)
	testutil.AssertAllClose(t, yFull[split:], y2, testutil.DefaultTolerance)
	for s := range zfFull {
		assert.InDelta(t, zfFull[s][0], zf2[s][0], testutil.DefaultTolerance)
		assert.InDelta(t, zfFull[s][1], zf2[s][1], testutil.DefaultTolerance)
	}
}

func TestSOSFilterStateShapeIsExact(t *testing.T) {
	sos := [][6]float64{testSection1, testSection2}
	x := narray.FromVector(testutil.RandomSignal(20))

	good, err := narray.FromSlice(make([]float64, 4), 2, 2)
	require.NoError(t, err)
	_, zf, err := SOSFilter(sos, x, 0, good)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, zf.Shape())

	// Unlike the direct-form state, the cascade state is never broadcast
	// or zero-extended.
	for _, shape := range [][]int{{2, 3}, {1, 2}, {2}} {
		size := 1
		for _, d := range shape {
			size *= d
		}
		bad, err := narray.FromSlice(make([]float64, size), shape...)
		require.NoError(t, err)
		_, _, err = SOSFilter(sos, x, 0, bad)
		assert.ErrorIs(t, err, ErrShape, "zi shape %v", shape)
	}
}

func TestSOSFilterValidation(t *testing.T) {
	x := narray.FromVector([]float64{1, 2, 3})
	_, _, err := SOSFilter([][6]float64{}, x, 0, nil)
	assert.ErrorIs(t, err, ErrCoefficients)

	degenerate := [6]float64{1, 0, 0, 0, 1, 0}
	_, _, err = SOSFilter([][6]float64{degenerate}, x, 0, nil)
	assert.ErrorIs(t, err, ErrCoefficients)
}

func TestSOSFilterAlongFirstAxis(t *testing.T) {
	const rows, cols = 30, 3
	data := testutil.RandomSignal(rows * cols)
	x, err := narray.FromSlice(data, rows, cols)
	require.NoError(t, err)
	sos := [][6]float64{testSection1, testSection2}

	y, _, err := SOSFilter(sos, x, 0, nil)
	require.NoError(t, err)

	for c := 0; c < cols; c++ {
		colIn := make([]float64, rows)
		for r := 0; r < rows; r++ {
			colIn[r] = x.At(r, c)
		}
		want, _, err := SOSFilterSignal(SOS{testSection1, testSection2}, colIn, nil)
		require.NoError(t, err)
		colOut := make([]float64, rows)
		for r := 0; r < rows; r++ {
			colOut[r] = y.At(r, c)
		}
		testutil.AssertAllClose(t, want, colOut, testutil.DefaultTolerance)
	}
}

func TestSOSFilterWithStateAlongAxis(t *testing.T) {
	// State shape for axis 0 of a (n, channels) array is
	// (sections, 2, channels); final states must match 1-D runs.
	const rows, cols = 25, 2
	data := testutil.RandomSignal(rows * cols)
	x, err := narray.FromSlice(data, rows, cols)
	require.NoError(t, err)
	sos := [][6]float64{testSection1, testSection2}

	zi, err := narray.FromSlice(make([]float64, 2*2*cols), 2, 2, cols)
	require.NoError(t, err)
	y, zf, err := SOSFilter(sos, x, 0, zi)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2, cols}, zf.Shape())

	for c := 0; c < cols; c++ {
		colIn := make([]float64, rows)
		for r := 0; r < rows; r++ {
			colIn[r] = x.At(r, c)
		}
		want, wantZf, err := SOSFilterSignal(SOS{testSection1, testSection2}, colIn, make([][2]float64, 2))
		require.NoError(t, err)
		for r := 0; r < rows; r++ {
			assert.InDelta(t, want[r], y.At(r, c), testutil.DefaultTolerance)
		}
		for s := range wantZf {
			assert.InDelta(t, wantZf[s][0], zf.At(s, 0, c), testutil.DefaultTolerance)
			assert.InDelta(t, wantZf[s][1], zf.At(s, 1, c), testutil.DefaultTolerance)
		}
	}
}
