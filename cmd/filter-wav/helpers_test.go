package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filter "github.com/tphakala/go-digital-filter"
)

func TestParseCoeffs(t *testing.T) {
	got, err := parseCoeffs("1, -0.5,0.25")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -0.5, 0.25}, got)

	_, err = parseCoeffs("1,abc")
	require.Error(t, err)
}

func TestParsePadding(t *testing.T) {
	for in, want := range map[string]filter.Padding{
		"odd":      filter.PadOdd,
		"Even":     filter.PadEven,
		"constant": filter.PadConstant,
		"const":    filter.PadConstant,
		"none":     filter.PadNone,
	} {
		got, err := parsePadding(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parsePadding("mirror")
	require.Error(t, err)
}

func TestParseSOS(t *testing.T) {
	sos, err := parseSOS(`
# butterworth section
0.0976, 0.1953, 0.0976, 1, -0.9428, 0.3333
0.5 0.3 0.1 1 -0.2 0.08
`)
	require.NoError(t, err)
	require.Len(t, sos, 2)
	assert.Equal(t, [6]float64{0.0976, 0.1953, 0.0976, 1, -0.9428, 0.3333}, sos[0])
	assert.Equal(t, [6]float64{0.5, 0.3, 0.1, 1, -0.2, 0.08}, sos[1])
}

func TestParseSOS_Malformed(t *testing.T) {
	_, err := parseSOS("1,2,3,4,5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 6 values")

	_, err = parseSOS("# only comments\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sections")
}

func TestBuildFilterConfig(t *testing.T) {
	cfg, err := buildFilterConfig("0.5,0.5", "1", "", "odd", -1, false, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, cfg.b)
	assert.Equal(t, []float64{1.0}, cfg.a)
	assert.Nil(t, cfg.sos)

	_, err = buildFilterConfig("", "1", "", "odd", -1, false, false, 0)
	require.Error(t, err, "missing coefficients")

	_, err = buildFilterConfig("1", "1", "", "spline", -1, false, false, 0)
	require.Error(t, err, "bad padding")
}

func TestBuildFilterConfig_SOSFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "filter.sos")
	require.NoError(t, os.WriteFile(path, []byte("0.2,0,0,1,-0.8,0\n"), 0o644))

	cfg, err := buildFilterConfig("", "1", path, "odd", -1, false, false, 0)
	require.NoError(t, err)
	require.Len(t, cfg.sos, 1)

	// Gustafsson's method has no cascade form.
	_, err = buildFilterConfig("", "1", path, "odd", -1, false, true, 0)
	require.Error(t, err)
}

func TestReadWAVInput_FileNotFound(t *testing.T) {
	_, err := readWAVInput("/nonexistent/file.wav", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestReadWAVInput_InvalidWAV(t *testing.T) {
	tmpDir := t.TempDir()
	invalidFile := filepath.Join(tmpDir, "invalid.wav")
	require.NoError(t, os.WriteFile(invalidFile, []byte("not a wav file"), 0o644))

	_, err := readWAVInput(invalidFile, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

func TestDeinterleaveInterleaveRoundTrip(t *testing.T) {
	data := []int{100, -200, 300, -400, 500, -600}
	channels := deinterleave(data, 2, 16)
	require.Len(t, channels, 2)
	assert.Len(t, channels[0], 3)
	assert.InDelta(t, 100.0/maxInt16, channels[0][0], 1e-12)
	assert.InDelta(t, -200.0/maxInt16, channels[1][0], 1e-12)

	back := interleave(channels, 16)
	assert.Equal(t, data, back)
}

func TestInterleaveClamps(t *testing.T) {
	out := interleave([][]float64{{1.5}, {-1.5}}, 16)
	assert.Equal(t, []int{32767, -32767}, out)
}

func TestInterleaveEmpty(t *testing.T) {
	assert.Nil(t, interleave(nil, 16))
	assert.Nil(t, interleave([][]float64{{}}, 16))
}

func TestMaxValueForBitDepth(t *testing.T) {
	assert.Equal(t, maxInt16, maxValueForBitDepth(16))
	assert.Equal(t, maxInt24, maxValueForBitDepth(24))
	assert.Equal(t, maxInt32, maxValueForBitDepth(32))
	assert.Equal(t, maxInt16, maxValueForBitDepth(13))
}

func TestFilterConfigApply(t *testing.T) {
	cfg, err := buildFilterConfig("0.25,0.5,0.25", "1", "", "odd", -1, false, false, 0)
	require.NoError(t, err)

	channels := [][]float64{make([]float64, 64)}
	for i := range channels[0] {
		channels[0][i] = 0.5
	}
	out, err := cfg.apply(channels)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0], 64)
	// A unity-DC-gain FIR applied with zero phase leaves a constant alone.
	for i, v := range out[0] {
		assert.InDelta(t, 0.5, v, 1e-8, "sample %d", i)
	}
}
