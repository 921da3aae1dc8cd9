// Package xcorr estimates the delay between two signals as the lag of the
// maximum of their (unnormalized) cross-correlation.
package xcorr

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/brettbuddin/fourier"
	"github.com/tphakala/simd/f64"
	timealigntypes "github.com/xaionaro-go/audiosync/pkg/timealign/types"
)

// DefaultWindow is the default amount of leading samples of each signal
// taken into account.
const DefaultWindow = 100000

// tieTolerance is the relative distance from the maximum within which
// FFT-computed correlation values are recomputed exactly.
const tieTolerance = 1e-9

// EstimateDelay returns the delay (in samples) of signalB relative to
// signalA: a positive value means signalB lags signalA.
//
// Only the first `window` samples of each signal are used. The
// cross-correlation is taken in numpy's "same" mode: L = max(len(b), len(a))
// consecutive lags starting from -min(len(b), len(a))/2, or ending at
// min(len(b), len(a))/2 if b is the shorter signal. The result is
// argmax(r) - L/2, thus it equals the actual lag only for signals of
// the same length. If several entries share the maximum, the first
// one wins.
func EstimateDelay(signalB, signalA []float64, window int) (int, error) {
	delay, _, err := estimate(signalB, signalA, window)
	return delay, err
}

// estimate returns the delay as described in EstimateDelay and the
// actual lag of the correlation maximum.
func estimate(signalB, signalA []float64, window int) (int, int, error) {
	if window <= 0 {
		return 0, 0, fmt.Errorf("%w: window must be positive, got %d", timealigntypes.ErrInvalidParameter, window)
	}
	if len(signalA) == 0 || len(signalB) == 0 {
		return 0, 0, fmt.Errorf("%w: empty signal (len(b) == %d, len(a) == %d)", timealigntypes.ErrInsufficientData, len(signalB), len(signalA))
	}
	b := signalB[:min(window, len(signalB))]
	a := signalA[:min(window, len(signalA))]

	r, first, err := crossCorrelate(b, a)
	if err != nil {
		return 0, 0, err
	}
	idx := bestIndex(r, b, a, first)
	return idx - len(r)/2, first + idx, nil
}

// firstLag returns the lag of the first entry of a "same"-mode
// correlation of signals of lengths lenB and lenA. numpy swaps the
// signals if b is the shorter one and reverses the output afterwards.
func firstLag(lenB, lenA int) int {
	n, l := min(lenB, lenA), max(lenB, lenA)
	if lenB >= lenA {
		return -(n / 2)
	}
	return n/2 - l + 1
}

// crossCorrelate returns the "same"-mode cross-correlation of b against a:
// entry i is sum_n b[n+first+i] * a[n].
func crossCorrelate(b, a []float64) (_ []float64, first int, _ error) {
	l := max(len(b), len(a))
	first = firstLag(len(b), len(a))

	size := 1
	for size < len(a)+len(b)+l {
		size <<= 1
	}

	fb := make([]complex128, size)
	for i, v := range b {
		fb[i] = complex(v, 0)
	}
	fa := make([]complex128, size)
	for i, v := range a {
		fa[i] = complex(v, 0)
	}
	if err := fourier.Forward(fb); err != nil {
		return nil, first, fmt.Errorf("unable to transform the signal B: %w", err)
	}
	if err := fourier.Forward(fa); err != nil {
		return nil, first, fmt.Errorf("unable to transform the signal A: %w", err)
	}
	// the inverse transform is done as a forward transform of the
	// conjugated spectrum: the real part is unaffected by the final
	// conjugation
	for i := range fb {
		fb[i] = fa[i] * cmplx.Conj(fb[i])
	}
	if err := fourier.Forward(fb); err != nil {
		return nil, first, fmt.Errorf("unable to perform the inverse transform: %w", err)
	}
	scale := 1 / float64(size)

	// fb[k mod size] == sum_n b[n+k] * a[n]
	r := make([]float64, l)
	for i := range r {
		k := first + i
		if k < 0 {
			k += size
		}
		r[i] = real(fb[k]) * scale
	}
	return r, first, nil
}

// bestIndex returns the first index of the maximum of r, resolving
// near-ties (within the FFT rounding error) by the exact dot products.
func bestIndex(r, b, a []float64, first int) int {
	maxIdx, maxVal, maxAbs := 0, math.Inf(-1), 0.0
	for i, v := range r {
		if v > maxVal {
			maxIdx, maxVal = i, v
		}
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	if maxAbs == 0 {
		return maxIdx
	}

	tolerance := tieTolerance * maxAbs
	bestIdx, bestVal := -1, 0.0
	for i, v := range r {
		if v < maxVal-tolerance {
			continue
		}
		exact := lagProduct(b, a, first+i)
		if bestIdx < 0 || exact > bestVal {
			bestIdx, bestVal = i, exact
		}
	}
	return bestIdx
}

// lagProduct returns sum_n b[n+lag] * a[n].
func lagProduct(b, a []float64, lag int) float64 {
	startA := max(0, -lag)
	endA := min(len(a), len(b)-lag)
	if endA <= startA {
		return 0
	}
	return f64.DotProduct(b[startA+lag:endA+lag], a[startA:endA])
}
