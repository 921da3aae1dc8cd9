package planar

import (
	"fmt"
)

// Unplanarize merges per-channel slices into interleaved frames. All
// channels must be of the same length.
func Unplanarize(input [][]float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, nil
	}
	samplesPerChan := len(input[0])
	for ch, samples := range input {
		if len(samples) != samplesPerChan {
			return nil, fmt.Errorf("the lengths of channels #0 and #%d are not equal: %d != %d", ch, samplesPerChan, len(samples))
		}
	}

	channels := len(input)
	output := make([]float64, samplesPerChan*channels)
	for ch, samples := range input {
		for samplePos, v := range samples {
			output[samplePos*channels+ch] = v
		}
	}

	return output, nil
}
