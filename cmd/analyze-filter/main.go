// Command analyze-filter prints the frequency response of a digital filter.
//
// Usage:
//
//	analyze-filter -b 0.0976,0.1953,0.0976 -a 1,-0.9428,0.3333
//	analyze-filter -sos butter8.sos -rate 48000 -points 16
//
// The response is measured numerically: the filter's impulse response is
// computed with the same code the library uses for filtering, then
// transformed with an FFT. The output is a magnitude/phase table plus the
// DC gain and -3 dB crossing, which is usually all that is needed to sanity
// check a set of coefficients.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/cmplx"
	"os"
	"strconv"
	"strings"

	"github.com/mjibson/go-dsp/fft"

	filter "github.com/tphakala/go-digital-filter"
)

const (
	defaultFFTSize = 4096
	defaultPoints  = 20

	minusThreeDB = -3.0103 // 20*log10(1/sqrt(2))
	floorDB      = -200.0  // Display floor for log magnitude
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	bStr := flag.String("b", "", "Numerator coefficients, comma separated")
	aStr := flag.String("a", "1", "Denominator coefficients, comma separated")
	sosPath := flag.String("sos", "", "File with second-order sections, one b0,b1,b2,a0,a1,a2 row per line (overrides -b/-a)")
	rate := flag.Float64("rate", 0, "Sample rate in Hz (0 = normalized frequency axis)")
	points := flag.Int("points", defaultPoints, "Number of table rows from DC to Nyquist")
	nfft := flag.Int("n", defaultFFTSize, "FFT size (longer = finer frequency resolution)")
	flag.Parse()

	var resp []complex128
	var order int
	switch {
	case *sosPath != "":
		sos, err := loadSOS(*sosPath)
		if err != nil {
			return err
		}
		order = 2 * len(sos)
		if resp, err = sosFrequencyResponse(sos, *nfft); err != nil {
			return err
		}
	case *bStr != "":
		b, err := parseCoeffs(*bStr)
		if err != nil {
			return fmt.Errorf("invalid -b: %w", err)
		}
		a, err := parseCoeffs(*aStr)
		if err != nil {
			return fmt.Errorf("invalid -a: %w", err)
		}
		order = max(len(b), len(a)) - 1
		if resp, err = frequencyResponse(b, a, *nfft); err != nil {
			return err
		}
	default:
		flag.Usage()
		return fmt.Errorf("either -b or -sos is required")
	}

	fmt.Printf("=== Filter Response (order %d) ===\n\n", order)
	printResponseTable(resp, *rate, *points)

	dc := cmplx.Abs(resp[0])
	fmt.Printf("\nDC gain: %.10f (%.2f dB)\n", dc, toDB(dc))
	nyq := cmplx.Abs(resp[len(resp)-1])
	fmt.Printf("Nyquist gain: %.10f (%.2f dB)\n", nyq, toDB(nyq))

	if f, ok := findCrossing(resp, minusThreeDB); ok {
		if *rate > 0 {
			fmt.Printf("-3 dB point: %.1f Hz\n", f**rate/2)
		} else {
			fmt.Printf("-3 dB point: %.4f (fraction of Nyquist)\n", f)
		}
	}
	return nil
}

// frequencyResponse returns the first half of the FFT of the impulse
// response, bins 0 (DC) through nfft/2 (Nyquist).
func frequencyResponse(b, a []float64, nfft int) ([]complex128, error) {
	if nfft < 2 {
		return nil, fmt.Errorf("FFT size must be at least 2, got %d", nfft)
	}
	impulse := make([]float64, nfft)
	impulse[0] = 1
	h, _, err := filter.FilterSignal(b, a, impulse, nil)
	if err != nil {
		return nil, err
	}
	spec := fft.FFTReal(h)
	return spec[:nfft/2+1], nil
}

// sosFrequencyResponse is the cascade analogue of frequencyResponse.
func sosFrequencyResponse(sos filter.SOS, nfft int) ([]complex128, error) {
	if nfft < 2 {
		return nil, fmt.Errorf("FFT size must be at least 2, got %d", nfft)
	}
	impulse := make([]float64, nfft)
	impulse[0] = 1
	h, _, err := filter.SOSFilterSignal(sos, impulse, nil)
	if err != nil {
		return nil, err
	}
	spec := fft.FFTReal(h)
	return spec[:nfft/2+1], nil
}

// loadSOS reads second-order sections, one per line as six comma- or
// space-separated values. Blank lines and # comments are skipped.
func loadSOS(path string) (filter.SOS, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SOS file: %w", err)
	}
	var sos filter.SOS
	for lineNo, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) != 6 {
			return nil, fmt.Errorf("line %d: expected 6 values, found %d", lineNo+1, len(fields))
		}
		var sec [6]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: value %q: %w", lineNo+1, f, err)
			}
			sec[i] = v
		}
		sos = append(sos, sec)
	}
	if len(sos) == 0 {
		return nil, fmt.Errorf("no sections found in %s", path)
	}
	return sos, nil
}

func printResponseTable(resp []complex128, rate float64, points int) {
	if points < 2 {
		points = 2
	}
	if rate > 0 {
		fmt.Printf("%12s  %12s  %12s\n", "freq (Hz)", "mag (dB)", "phase (deg)")
	} else {
		fmt.Printf("%12s  %12s  %12s\n", "freq (xNyq)", "mag (dB)", "phase (deg)")
	}
	last := len(resp) - 1
	for i := 0; i < points; i++ {
		bin := i * last / (points - 1)
		frac := float64(bin) / float64(last)
		mag := toDB(cmplx.Abs(resp[bin]))
		phase := cmplx.Phase(resp[bin]) * 180 / math.Pi
		if rate > 0 {
			fmt.Printf("%12.1f  %12.2f  %12.1f\n", frac*rate/2, mag, phase)
		} else {
			fmt.Printf("%12.4f  %12.2f  %12.1f\n", frac, mag, phase)
		}
	}
}

// findCrossing returns the normalized frequency (0..1 of Nyquist) where the
// magnitude first drops below the given level in dB, interpolating between
// bins.
func findCrossing(resp []complex128, levelDB float64) (float64, bool) {
	last := len(resp) - 1
	prev := toDB(cmplx.Abs(resp[0]))
	for i := 1; i <= last; i++ {
		cur := toDB(cmplx.Abs(resp[i]))
		if prev >= levelDB && cur < levelDB {
			t := (prev - levelDB) / (prev - cur)
			return (float64(i-1) + t) / float64(last), true
		}
		prev = cur
	}
	return 0, false
}

func toDB(mag float64) float64 {
	if mag <= 0 {
		return floorDB
	}
	return math.Max(20*math.Log10(mag), floorDB)
}

func parseCoeffs(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("coefficient %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
