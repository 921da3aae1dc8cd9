package gccphat

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// dynamicRange is the minimal cross-power (relative to the strongest bin)
// of a bin to be whitened: 60 dB.
const dynamicRange = 0.001

// Band limits the frequencies taken into account. A zero bound is open.
type Band struct {
	MinFreq float64
	MaxFreq float64
}

// bins returns the inclusive range of n-point FFT bins inside the band.
func (b Band) bins(n int, sampleRate float64) (int, int) {
	lo, hi := 0, n/2
	if b.MinFreq > 0 {
		lo = int(b.MinFreq * float64(n) / sampleRate)
	}
	if b.MaxFreq > 0 && b.MaxFreq < sampleRate/2 {
		hi = int(b.MaxFreq * float64(n) / sampleRate)
	}
	return lo, hi
}

// Estimate is a sub-sample shift of one track relative to another.
type Estimate struct {
	// Shift is positive if the comparison track lags the reference one.
	Shift float64

	// Confidence is in [0, 1]; 1 means the whitened spectra match exactly.
	Confidence float64
}

// CrossCorrelate estimates the shift of comp relative to ref using GCC-PHAT.
func CrossCorrelate(ref, comp []float64, sampleRate float64, band Band) (Estimate, error) {
	if sampleRate <= 0 {
		return Estimate{}, fmt.Errorf("sampleRate must be positive: got %v", sampleRate)
	}
	if len(ref) == 0 || len(comp) == 0 {
		return Estimate{}, fmt.Errorf("empty track: len(ref) == %d, len(comp) == %d", len(ref), len(comp))
	}
	n := fftSize(len(ref), len(comp))
	return correlateSpectra(spectrum(ref, n), spectrum(comp, n), sampleRate, band), nil
}

// fftSize returns the smallest power of two fitting the linear
// cross-correlation of tracks of the given lengths.
func fftSize(refLen, compLen int) int {
	n := 1
	for n < refLen+compLen-1 {
		n <<= 1
	}
	return n
}

// spectrum returns the n-point FFT of the zero-padded track.
func spectrum(track []float64, n int) []complex128 {
	padded := make([]float64, n)
	copy(padded, track)
	return fft.FFTReal(padded)
}

// whiten returns the phase of the cross-power spectrum within bins
// [lo, hi] (mirrored for the negative frequencies) and the amount of
// bins kept. Bins weaker than dynamicRange of the strongest one are zeroed.
func whiten(fref, fcomp []complex128, lo, hi int) ([]complex128, int) {
	n := len(fref)
	cross := make([]complex128, n)
	magnitudes := make([]float64, n)
	for i := range cross {
		cross[i] = fcomp[i] * cmplx.Conj(fref[i])
		magnitudes[i] = cmplx.Abs(cross[i])
	}
	threshold := floats.Max(magnitudes) * dynamicRange

	active := 0
	for i, mag := range magnitudes {
		freqBin := i
		if i > n/2 {
			freqBin = n - i
		}
		if freqBin < lo || freqBin > hi || mag <= threshold || mag <= 1e-12 {
			cross[i] = 0
			continue
		}
		cross[i] /= complex(mag, 0)
		active++
	}
	return cross, active
}

func correlateSpectra(fref, fcomp []complex128, sampleRate float64, band Band) Estimate {
	n := len(fref)
	lo, hi := band.bins(n, sampleRate)
	cross, active := whiten(fref, fcomp, lo, hi)
	if active == 0 {
		return Estimate{}
	}

	correlation := fft.IFFT(cross)
	magnitudes := make([]float64, n)
	for i, v := range correlation {
		magnitudes[i] = cmplx.Abs(v)
	}
	peak := floats.MaxIdx(magnitudes)

	// comp(t) = ref(t - shift)
	shift := float64(peak)
	if peak > n/2 {
		shift -= float64(n)
	}
	shift += parabolicOffset(
		magnitudes[(peak-1+n)%n],
		magnitudes[peak],
		magnitudes[(peak+1)%n],
	)

	// an exact match gives active/n at the peak
	return Estimate{
		Shift:      shift,
		Confidence: math.Min(1, magnitudes[peak]*float64(n)/float64(active)),
	}
}

// parabolicOffset returns the position of the vertex of the parabola
// through (-1, left), (0, center), (1, right).
func parabolicOffset(left, center, right float64) float64 {
	denom := left - 2*center + right
	if math.Abs(denom) <= 1e-12 {
		return 0
	}
	return (left - right) / (2 * denom)
}
