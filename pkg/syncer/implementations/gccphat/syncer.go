// Package gccphat implements an audio synchronization algorithm using
// Generalized Cross-Correlation with Phase Transform (GCC-PHAT).
//
// The algorithm calculates the time delay between two signals by
// looking at their cross-correlation in the frequency domain. By
// normalizing the magnitude (the Phase Transform), it becomes
// robust against variations in volume and certain types of noise,
// focusing only on the phase information that indicates the delay.
package gccphat

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/audiosync/pkg/audio/types"
	"github.com/xaionaro-go/audiosync/pkg/syncer"
)

type Syncer struct {
	SampleRate types.SampleRate
	Band       Band
}

var _ syncer.Syncer = (*Syncer)(nil)

// NewSyncer initializes a new one-shot GCC-PHAT syncer.
func NewSyncer(
	sampleRate types.SampleRate,
) (*Syncer, error) {
	if sampleRate == 0 {
		return nil, fmt.Errorf("sample rate is mandatory")
	}

	return &Syncer{
		SampleRate: sampleRate,
		// 100Hz to 12000Hz captures most informative audio without
		// low-frequency rumble and high-frequency digital noise.
		Band: Band{
			MinFreq: 100,
			MaxFreq: 12000,
		},
	}, nil
}

func (s *Syncer) CalculateShiftBetween(
	ctx context.Context,
	referenceTrack []float64,
	comparisonTracks ...[]float64,
) ([]syncer.ShiftResult, error) {
	if len(referenceTrack) == 0 {
		return nil, fmt.Errorf("the reference track is empty")
	}

	// the reference spectrum depends only on the FFT size
	refSpectra := map[int][]complex128{}

	results := make([]syncer.ShiftResult, len(comparisonTracks))
	for i, compSamples := range comparisonTracks {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if len(compSamples) == 0 {
			return nil, fmt.Errorf("comparison track %d is empty", i)
		}

		n := fftSize(len(referenceTrack), len(compSamples))
		fref, ok := refSpectra[n]
		if !ok {
			fref = spectrum(referenceTrack, n)
			refSpectra[n] = fref
		}
		estimate := correlateSpectra(fref, spectrum(compSamples, n), float64(s.SampleRate), s.Band)
		logger.Debugf(ctx, "track %d: shift %v, confidence %v", i, estimate.Shift, estimate.Confidence)
		results[i] = syncer.ShiftResult{
			Shift:      estimate.Shift,
			Confidence: estimate.Confidence,
		}
	}
	return results, nil
}
