package filter

import (
	"fmt"

	"github.com/tphakala/go-digital-filter/boundary"
	"github.com/tphakala/go-digital-filter/narray"
)

// Padding selects how the signal is extended past its endpoints before a
// zero-phase pass. It aliases the boundary package's kinds.
type Padding = boundary.Kind

const (
	// PadOdd extends by point reflection about the end samples (default).
	PadOdd Padding = boundary.Odd
	// PadEven extends by mirroring about the end samples.
	PadEven Padding = boundary.Even
	// PadConstant extends by replicating the end samples.
	PadConstant Padding = boundary.Constant
	// PadNone applies no extension.
	PadNone Padding = boundary.None
)

// Method selects the edge-handling strategy of FiltFilt.
type Method int

const (
	// MethodPad extends the signal, filters, and trims the extension.
	MethodPad Method = iota
	// MethodGust uses Gustafsson's optimal initial conditions and no padding.
	MethodGust
)

type filtfiltConfig struct {
	padding Padding
	padLen  int // -1 means the order-derived default
	method  Method
	irlen   int // 0 means the full impulse response
}

// FiltFiltOption adjusts the behavior of FiltFilt and SOSFiltFilt.
type FiltFiltOption func(*filtfiltConfig)

// WithPadding selects the boundary extension used by MethodPad.
func WithPadding(kind Padding) FiltFiltOption {
	return func(c *filtfiltConfig) { c.padding = kind }
}

// WithPadLength overrides the default extension length of 3x the filter
// order. The length must be smaller than the signal length along the
// filtered axis.
func WithPadLength(n int) FiltFiltOption {
	return func(c *filtfiltConfig) { c.padLen = n }
}

// WithMethod selects between padding and Gustafsson's method.
func WithMethod(m Method) FiltFiltOption {
	return func(c *filtfiltConfig) { c.method = m }
}

// WithImpulseLength truncates the impulse response considered by
// Gustafsson's method to n samples, which substantially speeds up long
// signals. Ignored by MethodPad; n <= 0 means no truncation.
func WithImpulseLength(n int) FiltFiltOption {
	return func(c *filtfiltConfig) { c.irlen = n }
}

func newFiltFiltConfig(opts []FiltFiltOption) filtfiltConfig {
	cfg := filtfiltConfig{padding: PadOdd, padLen: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// FiltFilt applies the filter (b, a) to x twice along the given axis, once
// forward and once backward. The combined response has zero phase and twice
// the magnitude order of the single filter. The whole signal must be in
// memory; there is no streaming variant.
//
// With the default MethodPad, the signal is first extended at both ends by
// the boundary rule (odd reflection unless overridden), each pass starts
// from the steady-state initial conditions scaled by its first sample, and
// the extension is trimmed from the result. How faithful the result is near
// the edges depends on how well the extension models the signal outside the
// observed window.
func FiltFilt(b, a []float64, x *narray.Array[float64], axis int, opts ...FiltFiltOption) (*narray.Array[float64], error) {
	cfg := newFiltFiltConfig(opts)
	ax, err := x.Axis(axis)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShape, err)
	}
	switch cfg.method {
	case MethodGust:
		y, _, _, err := FiltFiltGust(b, a, x, ax, cfg.irlen)
		return y, err
	case MethodPad:
	default:
		return nil, fmt.Errorf("%w: method must be pad or gust", ErrPadding)
	}

	ntaps := max(len(a), len(b))
	ext, edge, err := extendForFiltFilt(x, ax, cfg, ntaps)
	if err != nil {
		return nil, err
	}
	zi, err := SteadyStateZi(b, a)
	if err != nil {
		return nil, err
	}

	// Forward pass, starting at the level of the first extended sample.
	y, _, err := Linear(b, a, ext, ax, scaledState(zi, ext, ax))
	if err != nil {
		return nil, err
	}

	// Backward pass: reverse, filter from the new first sample's level,
	// reverse again to restore time order.
	rev := y.ReverseAxis(ax)
	y, _, err = Linear(b, a, rev, ax, scaledState(zi, rev, ax))
	if err != nil {
		return nil, err
	}
	y = y.ReverseAxis(ax)

	if edge > 0 {
		y = y.SliceAxis(ax, edge, y.Len(ax)-edge)
	}
	return y, nil
}

// SOSFiltFilt is the second-order-section form of FiltFilt. Only MethodPad
// is available for cascades. The default pad length discounts sections with
// a structurally zero b2 or a2 coefficient, so odd-order cascades produced
// by common design tools get the same default as their direct-form
// equivalents.
func SOSFiltFilt(sos SOS, x *narray.Array[float64], axis int, opts ...FiltFiltOption) (*narray.Array[float64], error) {
	cfg := newFiltFiltConfig(opts)
	if cfg.method != MethodPad {
		return nil, fmt.Errorf("%w: gustafsson method is not available for second-order sections", ErrPadding)
	}
	sections, err := normalizeSOS(sos)
	if err != nil {
		return nil, err
	}
	ax, err := x.Axis(axis)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShape, err)
	}

	zeroB2, zeroA2 := 0, 0
	for _, sec := range sections {
		if sec[2] == 0 {
			zeroB2++
		}
		if sec[5] == 0 {
			zeroA2++
		}
	}
	ntaps := 2*len(sections) + 1 - min(zeroB2, zeroA2)

	ext, edge, err := extendForFiltFilt(x, ax, cfg, ntaps)
	if err != nil {
		return nil, err
	}
	zi, err := SOSSteadyStateZi(sos)
	if err != nil {
		return nil, err
	}

	y, _, err := SOSFilter(sos, ext, ax, sosScaledState(zi, ext, ax))
	if err != nil {
		return nil, err
	}
	rev := y.ReverseAxis(ax)
	y, _, err = SOSFilter(sos, rev, ax, sosScaledState(zi, rev, ax))
	if err != nil {
		return nil, err
	}
	y = y.ReverseAxis(ax)

	if edge > 0 {
		y = y.SliceAxis(ax, edge, y.Len(ax)-edge)
	}
	return y, nil
}

// extendForFiltFilt validates the padding configuration and returns the
// extended signal together with the extension length.
func extendForFiltFilt(x *narray.Array[float64], ax int, cfg filtfiltConfig, ntaps int) (*narray.Array[float64], int, error) {
	switch cfg.padding {
	case PadOdd, PadEven, PadConstant, PadNone:
	default:
		return nil, 0, fmt.Errorf("%w: unknown padding kind %v; must be odd, even, constant, or none",
			ErrPadding, cfg.padding)
	}

	if cfg.padLen < -1 {
		return nil, 0, fmt.Errorf("%w: pad length must be non-negative, got %d", ErrPadding, cfg.padLen)
	}
	var edge int
	switch {
	case cfg.padding == PadNone:
		edge = 0
	case cfg.padLen >= 0:
		edge = cfg.padLen
	default:
		edge = 3 * ntaps
	}
	if x.Len(ax) <= edge {
		return nil, 0, fmt.Errorf("%w: the signal length along the axis (%d) must be greater than the pad length (%d)",
			ErrPadding, x.Len(ax), edge)
	}

	if cfg.padding == PadNone || edge == 0 {
		return x, 0, nil
	}
	ext, err := boundary.Extend(x, edge, ax, cfg.padding)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPadding, err)
	}
	return ext, edge, nil
}

// scaledState builds a full-batch initial-state array from a 1-D steady
// state, scaling it per lane by the first sample of ref along the axis.
func scaledState(zi []float64, ref *narray.Array[float64], ax int) *narray.Array[float64] {
	k := len(zi)
	out := narray.New[float64](narray.ShapeWith(ref.Shape(), ax, k)...)
	refLanes := ref.Lanes(ax)
	outLanes := out.Lanes(ax)
	if k == 0 {
		return out
	}
	buf := make([]float64, k)
	data := ref.Data()
	for i, lane := range refLanes {
		x0 := data[lane.Offset]
		for j, v := range zi {
			buf[j] = v * x0
		}
		out.Scatter(outLanes[i], buf)
	}
	return out
}

// sosScaledState is the cascade analogue of scaledState, producing the
// (n_sections, ..., 2, ...) state array SOSFilter expects.
func sosScaledState(zi [][2]float64, ref *narray.Array[float64], ax int) *narray.Array[float64] {
	nSections := len(zi)
	shape := append([]int{nSections}, narray.ShapeWith(ref.Shape(), ax, 2)...)
	out := narray.New[float64](shape...)
	refLanes := ref.Lanes(ax)
	outLanes := out.Lanes(ax + 1)
	batch := len(refLanes)
	data := ref.Data()
	buf := make([]float64, 2)
	for i, lane := range refLanes {
		x0 := data[lane.Offset]
		for s := range zi {
			buf[0] = zi[s][0] * x0
			buf[1] = zi[s][1] * x0
			out.Scatter(outLanes[s*batch+i], buf)
		}
	}
	return out
}
