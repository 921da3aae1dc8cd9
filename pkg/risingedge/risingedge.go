// Package risingedge finds the first rising edge of a periodic sync
// waveform in a recorded channel.
package risingedge

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/tphakala/simd/c128"
	"github.com/tphakala/simd/f64"
	"github.com/xaionaro-go/audiosync/pkg/audio/types"
	"github.com/xaionaro-go/audiosync/pkg/peaks"
	timealigntypes "github.com/xaionaro-go/audiosync/pkg/timealign/types"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// Result is the outcome of a detection.
type Result struct {
	// Index is the sample index of the first rising edge.
	Index int

	// Peaks are all the detected sync cycles (Index is the first one).
	Peaks []int

	// Warning is set if the sync cycles are not regularly spaced,
	// which usually means there are gaps in the recording. The
	// detection is still considered successful.
	Warning *IrregularSyncWarning
}

// IrregularSyncWarning reports non-uniform spacing between the detected
// sync cycles.
type IrregularSyncWarning struct {
	// Spacings are the unique distances between consecutive peaks (sorted).
	Spacings []int
}

func (w *IrregularSyncWarning) String() string {
	return fmt.Sprintf("the sync signal peak-to-peak spacing varies (there may be gaps in the recording); unique spacings: %v", w.Spacings)
}

// Detect returns the index of the first rising edge of the sync waveform
// in the recording.
//
// The recording is convolved with the time-reversed template (the output
// has the length of the recording, and the output index i corresponds to
// the template starting at i-len(template)/2), the result is normalized to
// its maximal absolute value, and the peaks are picked with the configured
// threshold and minimal spacing.
func Detect(
	ctx context.Context,
	recording []float64,
	sampleRate types.SampleRate,
	cfg Config,
) (_ret Result, _err error) {
	logger.Tracef(ctx, "Detect(ctx, [%d samples], %d)", len(recording), sampleRate)
	defer func() { logger.Tracef(ctx, "/Detect(ctx, [%d samples], %d): %v %v", len(recording), sampleRate, _ret.Index, _err) }()

	cfg, err := cfg.Resolve(sampleRate)
	if err != nil {
		return Result{}, err
	}
	template := cfg.Template.Samples

	if len(recording) == 0 {
		return Result{}, fmt.Errorf("%w: empty recording", timealigntypes.ErrInsufficientData)
	}
	if len(recording) < len(template) {
		return Result{}, fmt.Errorf("%w: the recording (%d samples) is shorter than the template (%d samples)", timealigntypes.ErrInsufficientData, len(recording), len(template))
	}

	conv := ConvolveSame(recording, template)

	maxAbs := math.Max(floats.Max(conv), -floats.Min(conv))
	if !(maxAbs > 0) {
		return Result{}, fmt.Errorf("%w: the correlation with the template is zero", timealigntypes.ErrNoSyncSignalFound)
	}
	f64.Scale(conv, conv, 1/maxAbs)

	minDistance := cfg.minDistance(sampleRate)
	pks := peaks.Indexes(conv, cfg.Threshold, minDistance)
	logger.Debugf(ctx, "found %d sync peaks (threshold: %v, min distance: %d)", len(pks), cfg.Threshold, minDistance)
	if len(pks) == 0 {
		return Result{}, fmt.Errorf("%w: no peaks above the threshold %v", timealigntypes.ErrNoSyncSignalFound, cfg.Threshold)
	}

	result := Result{
		Index: pks[0],
		Peaks: pks,
	}
	if spacings := uniqueSpacings(pks); len(spacings) > 1 {
		result.Warning = &IrregularSyncWarning{Spacings: spacings}
		logger.Warnf(ctx, "%s", result.Warning)
	}
	return result, nil
}

func uniqueSpacings(pks []int) []int {
	var spacings []int
	for i := 1; i < len(pks); i++ {
		spacings = append(spacings, pks[i]-pks[i-1])
	}
	slices.Sort(spacings)
	return slices.Compact(spacings)
}

// ConvolveSame convolves the signal with the time-reversed kernel and
// returns the central part of the result of the length of the signal:
//
//	out[i] = sum_k signal[i + k - len(kernel)/2] * kernel[k]
//
// The signal is expected to be not shorter than the kernel.
func ConvolveSame(signal, kernel []float64) []float64 {
	fullLen := len(signal) + len(kernel) - 1
	fftSize := 1
	for fftSize < fullLen {
		fftSize <<= 1
	}
	fft := fourier.NewFFT(fftSize)

	padded := make([]float64, fftSize)
	copy(padded, signal)
	signalFFT := fft.Coefficients(nil, padded)

	clear(padded)
	for i := range kernel {
		padded[i] = kernel[len(kernel)-1-i]
	}
	kernelFFT := fft.Coefficients(nil, padded)

	product := make([]complex128, len(signalFFT))
	c128.Mul(product, signalFFT, kernelFFT)

	full := fft.Sequence(padded, product)
	f64.Scale(full, full, 1/float64(fftSize))

	offset := len(kernel) - 1 - len(kernel)/2
	out := make([]float64, len(signal))
	copy(out, full[offset:offset+len(signal)])
	return out
}
