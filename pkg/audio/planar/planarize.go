package planar

import (
	"fmt"
)

// Planarize splits interleaved frames (c0 c1 … cN c0 c1 … cN …) into one
// slice per channel.
func Planarize(channels int, input []float64) ([][]float64, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("the amount of channels must be positive, got %d", channels)
	}
	if len(input)%channels != 0 {
		return nil, fmt.Errorf("expected an input length that is a multiple of %d, but received %d", channels, len(input))
	}

	samplesPerChan := len(input) / channels
	output := make([][]float64, channels)
	for ch := range output {
		output[ch] = make([]float64, samplesPerChan)
	}
	for samplePos := 0; samplePos < samplesPerChan; samplePos++ {
		frame := input[samplePos*channels : (samplePos+1)*channels]
		for ch, v := range frame {
			output[ch][samplePos] = v
		}
	}

	return output, nil
}
