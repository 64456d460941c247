package convolve

import (
	"github.com/tphakala/simd/c128"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// Default FFT block size (power of 2 for efficiency).
	defaultFFTBlockSize = 512

	// fftHermitianDivisor is used to calculate unique frequency bins in a
	// real FFT. Due to Hermitian symmetry, a real FFT of size N has N/2 + 1
	// unique complex coefficients.
	fftHermitianDivisor = 2
)

// FFT performs overlap-save convolution for long FIR kernels,
// O(N log N) vs O(N*M) for the direct kernel. The kernel is transformed once
// at construction and reused across lanes of a batch, which is where the
// method pays off for multi-channel signals.
type FFT struct {
	fft       *fourier.FFT
	fftSize   int
	blockSize int // valid output samples per block = fftSize - kernelLen + 1

	// Precomputed kernel in frequency domain
	kernelFFT []complex128
	kernelLen int
	fftLen    int     // length of FFT output = fftSize/2 + 1
	scale     float64 // 1/fftSize (gonum's inverse transform is unnormalized)

	// Working buffers, reused across blocks and lanes
	signalBlock []float64
	signalFFT   []complex128
	productFFT  []complex128
	ifftResult  []float64
}

// NewFFT creates an overlap-save convolver for the given kernel.
func NewFFT(kernel []float64) *FFT {
	kernelLen := len(kernel)
	if kernelLen == 0 {
		return nil
	}

	fftSize := defaultFFTBlockSize
	for fftSize < 2*kernelLen {
		fftSize *= 2
	}
	blockSize := fftSize - kernelLen + 1
	fft := fourier.NewFFT(fftSize)

	// The per-block circular product is a convolution against the stored
	// kernel, so the kernel is stored as-is; the zero padding applied in
	// Full turns the valid region into the full linear convolution.
	kernelPadded := make([]float64, fftSize)
	copy(kernelPadded, kernel)
	kernelFFT := fft.Coefficients(nil, kernelPadded)

	fftLen := fftSize/fftHermitianDivisor + 1

	return &FFT{
		fft:         fft,
		fftSize:     fftSize,
		blockSize:   blockSize,
		kernelFFT:   kernelFFT,
		kernelLen:   kernelLen,
		fftLen:      fftLen,
		scale:       1.0 / float64(fftSize),
		signalBlock: make([]float64, fftSize),
		signalFFT:   make([]complex128, fftLen),
		productFFT:  make([]complex128, fftLen),
		ifftResult:  make([]float64, fftSize),
	}
}

// Full computes the full convolution of x with the stored kernel into dst,
// which must have length len(x)+kernelLen-1.
func (c *FFT) Full(dst, x []float64) {
	k := c.kernelLen - 1
	padded := make([]float64, len(x)+2*k)
	copy(padded[k:], x)
	c.valid(dst[:len(x)+k], padded)
}

// valid performs overlap-save convolution over the valid region of signal:
// dst[n] = sum_j signal[n+overlap-j] * kernel[j].
func (c *FFT) valid(dst, signal []float64) {
	signalLen := len(signal)
	outputLen := signalLen - c.kernelLen + 1
	if outputLen <= 0 || len(dst) < outputLen {
		return
	}

	// Each FFT block reads fftSize input samples starting at the next output
	// position and produces blockSize valid outputs; the first kernelLen-1
	// samples of each inverse transform are circular-wrap artifacts and are
	// discarded.
	outIdx := 0
	overlap := c.kernelLen - 1

	for outIdx < outputLen {
		for i := range c.signalBlock {
			c.signalBlock[i] = 0
		}
		copyLen := c.fftSize
		if outIdx+copyLen > signalLen {
			copyLen = signalLen - outIdx
		}
		if copyLen > 0 {
			copy(c.signalBlock, signal[outIdx:outIdx+copyLen])
		}

		c.signalFFT = c.fft.Coefficients(c.signalFFT, c.signalBlock)
		c128.Mul(c.productFFT, c.signalFFT, c.kernelFFT)
		c.ifftResult = c.fft.Sequence(c.ifftResult, c.productFFT)
		f64.Scale(c.ifftResult, c.ifftResult, c.scale)

		validSamples := c.blockSize
		if outIdx+validSamples > outputLen {
			validSamples = outputLen - outIdx
		}
		copy(dst[outIdx:outIdx+validSamples], c.ifftResult[overlap:overlap+validSamples])
		outIdx += validSamples
	}
}
