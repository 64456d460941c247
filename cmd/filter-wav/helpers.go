package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	filter "github.com/tphakala/go-digital-filter"
)

// Sample format constants
const (
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	sosFieldsPerSection = 6
)

// filterConfig is the fully parsed filter selection.
type filterConfig struct {
	b, a    []float64
	sos     filter.SOS
	single  bool
	gust    bool
	irlen   int
	padding filter.Padding
	padLen  int
}

// buildFilterConfig validates the flag combination and parses the
// coefficient sources.
func buildFilterConfig(bStr, aStr, sosPath, padStr string, padLen int, single, gust bool, irlen int) (*filterConfig, error) {
	cfg := &filterConfig{single: single, gust: gust, irlen: irlen, padLen: padLen}

	padding, err := parsePadding(padStr)
	if err != nil {
		return nil, err
	}
	cfg.padding = padding

	if sosPath != "" {
		if gust {
			return nil, fmt.Errorf("-gust requires direct-form -b/-a coefficients")
		}
		sos, err := loadSOSFile(sosPath)
		if err != nil {
			return nil, err
		}
		cfg.sos = sos
		return cfg, nil
	}

	if bStr == "" {
		return nil, fmt.Errorf("either -b or -sos must be given")
	}
	if cfg.b, err = parseCoeffs(bStr); err != nil {
		return nil, fmt.Errorf("invalid -b: %w", err)
	}
	if cfg.a, err = parseCoeffs(aStr); err != nil {
		return nil, fmt.Errorf("invalid -a: %w", err)
	}
	return cfg, nil
}

// parseCoeffs parses a comma-separated coefficient list.
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

// parsePadding maps a flag value to a boundary kind.
func parsePadding(s string) (filter.Padding, error) {
	switch strings.ToLower(s) {
	case "odd":
		return filter.PadOdd, nil
	case "even":
		return filter.PadEven, nil
	case "constant", "const":
		return filter.PadConstant, nil
	case "none":
		return filter.PadNone, nil
	}
	return 0, fmt.Errorf("unknown padding %q: must be odd, even, constant, or none", s)
}

// loadSOSFile reads second-order sections from a file, one section per
// line as six comma- or space-separated values b0,b1,b2,a0,a1,a2.
// Blank lines and lines starting with # are skipped.
func loadSOSFile(path string) (filter.SOS, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SOS file: %w", err)
	}
	return parseSOS(string(raw))
}

func parseSOS(text string) (filter.SOS, error) {
	var sos filter.SOS
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) != sosFieldsPerSection {
			return nil, fmt.Errorf("line %d: expected %d values, found %d", lineNo+1, sosFieldsPerSection, len(fields))
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
		return nil, fmt.Errorf("no sections found")
	}
	return sos, nil
}

// filtfiltOpts translates the config into zero-phase filtering options.
func (c *filterConfig) filtfiltOpts() []filter.FiltFiltOption {
	opts := []filter.FiltFiltOption{filter.WithPadding(c.padding)}
	if c.padLen >= 0 {
		opts = append(opts, filter.WithPadLength(c.padLen))
	}
	if c.gust {
		opts = append(opts, filter.WithMethod(filter.MethodGust))
		if c.irlen > 0 {
			opts = append(opts, filter.WithImpulseLength(c.irlen))
		}
	}
	return opts
}

func (c *filterConfig) describe() string {
	if c.sos != nil {
		return fmt.Sprintf("%d second-order sections", len(c.sos))
	}
	return fmt.Sprintf("direct form, order %d", max(len(c.b), len(c.a))-1)
}

// wavInput holds a fully decoded input file.
type wavInput struct {
	buf      *audio.IntBuffer
	rate     int
	channels int
	bitDepth int
}

// readWAVInput decodes the whole WAV file into memory.
func readWAVInput(path string, verbose bool) (*wavInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}
	if len(buf.Data) == 0 {
		return nil, fmt.Errorf("empty WAV file: %s", path)
	}

	format := buf.Format
	bitDepth := int(decoder.BitDepth)
	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit",
			format.SampleRate, format.NumChannels, bitDepth)
	}

	return &wavInput{
		buf:      buf,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: bitDepth,
	}, nil
}

// writeWAVOutput interleaves the channels and writes them as PCM.
func writeWAVOutput(path string, channels [][]float64, rate, bitDepth int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	enc := wav.NewEncoder(f, rate, bitDepth, len(channels), 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{SampleRate: rate, NumChannels: len(channels)},
		Data:   interleave(channels, bitDepth),
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}

// maxValueForBitDepth returns the full-scale sample value.
func maxValueForBitDepth(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// deinterleave converts interleaved int samples to per-channel float
// slices normalized to [-1, 1].
func deinterleave(data []int, numChannels, bitDepth int) [][]float64 {
	samplesPerChannel := len(data) / numChannels
	invMax := 1.0 / maxValueForBitDepth(bitDepth)
	out := make([][]float64, numChannels)
	for ch := range out {
		out[ch] = make([]float64, samplesPerChannel)
	}
	for i := 0; i < samplesPerChannel; i++ {
		base := i * numChannels
		for ch := range out {
			out[ch][i] = float64(data[base+ch]) * invMax
		}
	}
	return out
}

// interleave converts per-channel floats back to interleaved int samples.
// Filtering can overshoot the input range, so samples are clamped to full
// scale before conversion.
func interleave(channels [][]float64, bitDepth int) []int {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil
	}
	numChannels := len(channels)
	samplesPerChannel := len(channels[0])
	maxVal := maxValueForBitDepth(bitDepth)
	out := make([]int, samplesPerChannel*numChannels)
	for i := 0; i < samplesPerChannel; i++ {
		base := i * numChannels
		for ch := range channels {
			s := channels[ch][i]
			if s > 1.0 {
				s = 1.0
			} else if s < -1.0 {
				s = -1.0
			}
			out[base+ch] = int(s * maxVal)
		}
	}
	return out
}
