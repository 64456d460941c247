package filter

import (
	"slices"
	"sync"

	"github.com/tphakala/go-digital-filter/narray"
)

// FilterSignal filters a single 1-D signal with the transfer function
// (b, a). zi supplies the initial delay-line state; when zi is non-nil the
// final state is returned as well, so a long stream can be filtered in
// chunks by feeding each chunk's final state into the next call.
func FilterSignal(b, a, x []float64, zi []float64) (y, zf []float64, err error) {
	var ziArr *narray.Array[float64]
	if zi != nil {
		ziArr = narray.FromVector(slices.Clone(zi))
	}
	yArr, zfArr, err := Linear(b, a, narray.FromVector(x), 0, ziArr)
	if err != nil {
		return nil, nil, err
	}
	if zfArr != nil {
		zf = zfArr.Data()
	}
	return yArr.Data(), zf, nil
}

// SOSFilterSignal filters a single 1-D signal with a second-order-section
// cascade. zi holds one 2-element state per section; the final per-section
// states are returned when zi is non-nil.
func SOSFilterSignal(sos SOS, x []float64, zi [][2]float64) (y []float64, zf [][2]float64, err error) {
	var ziArr *narray.Array[float64]
	if zi != nil {
		flat := make([]float64, 2*len(zi))
		for s, st := range zi {
			flat[2*s] = st[0]
			flat[2*s+1] = st[1]
		}
		ziArr, err = narray.FromSlice(flat, len(zi), 2)
		if err != nil {
			return nil, nil, err
		}
	}
	yArr, zfArr, err := SOSFilter(sos, narray.FromVector(x), 0, ziArr)
	if err != nil {
		return nil, nil, err
	}
	if zfArr != nil {
		flat := zfArr.Data()
		zf = make([][2]float64, len(flat)/2)
		for s := range zf {
			zf[s] = [2]float64{flat[2*s], flat[2*s+1]}
		}
	}
	return yArr.Data(), zf, nil
}

// FiltFiltSignal zero-phase filters a single 1-D signal.
func FiltFiltSignal(b, a, x []float64, opts ...FiltFiltOption) ([]float64, error) {
	y, err := FiltFilt(b, a, narray.FromVector(x), 0, opts...)
	if err != nil {
		return nil, err
	}
	return y.Data(), nil
}

// SOSFiltFiltSignal zero-phase filters a single 1-D signal with a
// second-order-section cascade.
func SOSFiltFiltSignal(sos SOS, x []float64, opts ...FiltFiltOption) ([]float64, error) {
	y, err := SOSFiltFilt(sos, narray.FromVector(x), 0, opts...)
	if err != nil {
		return nil, err
	}
	return y.Data(), nil
}

// FiltFiltMulti zero-phase filters independent channels concurrently, one
// goroutine per channel. Channels are independent signals, so the
// parallelism cannot change any result: sample order within each channel is
// still strictly sequential.
func FiltFiltMulti(b, a []float64, channels [][]float64, opts ...FiltFiltOption) ([][]float64, error) {
	out := make([][]float64, len(channels))
	errs := make([]error, len(channels))
	var wg sync.WaitGroup
	for i, ch := range channels {
		wg.Add(1)
		go func(i int, ch []float64) {
			defer wg.Done()
			out[i], errs[i] = FiltFiltSignal(b, a, ch, opts...)
		}(i, ch)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
