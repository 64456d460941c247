// Package convolve provides full linear convolution kernels for the FIR
// filtering path: a direct SIMD implementation for short kernels and an
// overlap-save FFT implementation for long ones.
package convolve

import (
	"github.com/tphakala/simd/f64"
)

// FFTThreshold is the kernel length above which overlap-save FFT convolution
// beats the direct SIMD kernel. Benchmarking of the dot-product kernels puts
// the crossover around 400-500 taps.
const FFTThreshold = 400

// Full computes the full linear convolution of x with h into dst:
//
//	dst[n] = sum_k h[k] * x[n-k],  n = 0 .. len(x)+len(h)-2
//
// dst must have length len(x)+len(h)-1. The kernel choice (direct vs FFT)
// is made per call from the kernel length.
func Full(dst, x, h []float64) {
	if len(h) >= FFTThreshold {
		NewFFT(h).Full(dst, x)
		return
	}
	Direct(dst, x, h)
}

// Direct computes the full convolution with the SIMD valid-convolution
// primitive. The input is zero-padded by len(h)-1 on both sides so that the
// valid region of the padded signal is exactly the full convolution, and the
// kernel is reversed because ConvolveValid correlates rather than convolves.
func Direct(dst, x, h []float64) {
	k := len(h) - 1
	if k < 0 || len(x) == 0 {
		return
	}
	if k == 0 {
		f64.Scale(dst[:len(x)], x, h[0])
		return
	}
	padded := make([]float64, len(x)+2*k)
	copy(padded[k:], x)
	f64.ConvolveValid(dst[:len(x)+k], padded, reverse(h))
}

func reverse(h []float64) []float64 {
	r := make([]float64, len(h))
	for i, v := range h {
		r[len(h)-1-i] = v
	}
	return r
}

// FullGeneric is the scalar fallback for element types without a SIMD or FFT
// kernel (complex and opaque generic elements reach the FIR path too).
func FullGeneric[T ~float32 | ~float64 | ~complex64 | ~complex128](dst, x, h []T) {
	for i := range dst {
		var zero T
		dst[i] = zero
	}
	for n, xn := range x {
		for k, hk := range h {
			dst[n+k] += hk * xn
		}
	}
}
