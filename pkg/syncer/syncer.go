package syncer

import (
	"context"
)

type ShiftResult struct {
	Shift      float64 // Delay relative to reference (positive means the comparison lags the reference)
	Confidence float64 // Confidence score (0..1)
}

type Syncer interface {
	// CalculateShiftBetween returns the amount of samples each
	// comparison track is delayed by relative to the reference track.
	// It also returns a confidence score (0..1) for each result.
	CalculateShiftBetween(
		ctx context.Context,
		referenceTrack []float64,
		comparisonTracks ...[]float64,
	) ([]ShiftResult, error)
}

/* for easier copy&paste:

// CalculateShiftBetween returns the amount of samples each
// comparison track is delayed by relative to the reference track.
// It also returns a confidence score (0..1) for each result.
func () CalculateShiftBetween(
	ctx context.Context,
	referenceTrack []float64,
	comparisonTracks ...[]float64,
) ([]syncer.ShiftResult, error) {
}

*/
