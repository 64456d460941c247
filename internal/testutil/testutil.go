// Package testutil provides reusable test helpers for the filtering tests.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	SolverTolerance  = 1e-8
	EdgeTolerance    = 1e-4
)

// Seeds for deterministic random signals.
const (
	rngSeed1 = 0x5eed
	rngSeed2 = 0xf117e4
)

// AssertAllClose verifies got and want have equal length and match
// element-wise within tolerance.
func AssertAllClose(t *testing.T, want, got []float64, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, got, len(want), msgAndArgs...) {
		return false
	}
	for i := range want {
		if !assert.InDelta(t, want[i], got[i], tolerance,
			"mismatch at index %d: want %g, got %g", i, want[i], got[i]) {
			return false
		}
	}
	return true
}

// AssertAllConstant verifies every element equals value within tolerance.
func AssertAllConstant(t *testing.T, s []float64, value, tolerance float64) bool {
	t.Helper()
	for i, v := range s {
		if !assert.InDelta(t, value, v, tolerance, "s[%d]=%g is not %g", i, v, value) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// MaxAbsDiff returns the largest element-wise absolute difference.
func MaxAbsDiff(a, b []float64) float64 {
	maxDiff := 0.0
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}

// Ones returns a slice of n ones.
func Ones(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

// Impulse returns a unit impulse of length n.
func Impulse(n int) []float64 {
	s := make([]float64, n)
	if n > 0 {
		s[0] = 1
	}
	return s
}

// Sine returns n samples of sin(2*pi*freq*i), freq in cycles per sample.
func Sine(n int, freq float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.Sin(2 * math.Pi * freq * float64(i))
	}
	return s
}

// Ramp returns the samples 0, 1, ..., n-1.
func Ramp(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(i)
	}
	return s
}

// RandomSignal returns n deterministic pseudo-random samples in [-1, 1).
func RandomSignal(n int) []float64 {
	rng := rand.New(rand.NewPCG(rngSeed1, rngSeed2))
	s := make([]float64, n)
	for i := range s {
		s[i] = 2*rng.Float64() - 1
	}
	return s
}

// SmoothRandomWalk returns a deterministic random walk, a signal with strong
// low-frequency content that exercises edge handling without discontinuities.
func SmoothRandomWalk(n int) []float64 {
	rng := rand.New(rand.NewPCG(rngSeed2, rngSeed1))
	s := make([]float64, n)
	acc := 0.0
	for i := range s {
		acc += 2*rng.Float64() - 1
		s[i] = acc
	}
	return s
}
