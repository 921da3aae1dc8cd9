package xcorr

import (
	"context"
	"fmt"
	"math"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/tphakala/simd/f64"
	"github.com/xaionaro-go/audiosync/pkg/syncer"
)

type Syncer struct {
	Window int
}

var _ syncer.Syncer = (*Syncer)(nil)

// NewSyncer returns a cross-correlation syncer using the first `window`
// samples of every track (DefaultWindow if zero).
func NewSyncer(window int) *Syncer {
	if window == 0 {
		window = DefaultWindow
	}
	return &Syncer{
		Window: window,
	}
}

// CalculateShiftBetween returns the amount of samples each
// comparison track is delayed by relative to the reference track.
// The shifts are the ones of EstimateDelay; the confidence is the
// normalized correlation at the maximum.
func (s *Syncer) CalculateShiftBetween(
	ctx context.Context,
	referenceTrack []float64,
	comparisonTracks ...[]float64,
) ([]syncer.ShiftResult, error) {
	results := make([]syncer.ShiftResult, len(comparisonTracks))
	for i, comparisonTrack := range comparisonTracks {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		delay, lag, err := estimate(comparisonTrack, referenceTrack, s.Window)
		if err != nil {
			return nil, fmt.Errorf("unable to estimate the delay of track %d: %w", i, err)
		}
		confidence := normalizedCorrelation(
			comparisonTrack[:min(s.Window, len(comparisonTrack))],
			referenceTrack[:min(s.Window, len(referenceTrack))],
			lag,
		)
		logger.Debugf(ctx, "track %d: delay %d, confidence %v", i, delay, confidence)
		results[i] = syncer.ShiftResult{
			Shift:      float64(delay),
			Confidence: confidence,
		}
	}
	return results, nil
}

func normalizedCorrelation(b, a []float64, lag int) float64 {
	energy := math.Sqrt(f64.DotProduct(a, a) * f64.DotProduct(b, b))
	if energy == 0 {
		return 0
	}
	return max(0, min(1, lagProduct(b, a, lag)/energy))
}
