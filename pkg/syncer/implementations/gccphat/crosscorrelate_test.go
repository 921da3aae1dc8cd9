package gccphat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossCorrelate(t *testing.T) {
	ref := make([]float64, 600)
	ref[200] = 1.0

	t.Run("different_lengths", func(t *testing.T) {
		comp := make([]float64, 400)
		comp[223] = 1.0

		estimate, err := CrossCorrelate(ref, comp, 48000, Band{})
		require.NoError(t, err)
		assert.InDelta(t, 23.0, estimate.Shift, 0.5)
		assert.InDelta(t, 1.0, estimate.Confidence, 1e-6)
	})

	t.Run("swapped", func(t *testing.T) {
		comp := make([]float64, 400)
		comp[223] = 1.0

		estimate, err := CrossCorrelate(comp, ref, 48000, Band{})
		require.NoError(t, err)
		assert.InDelta(t, -23.0, estimate.Shift, 0.5)
	})

	t.Run("silence", func(t *testing.T) {
		estimate, err := CrossCorrelate(ref, make([]float64, 100), 48000, Band{})
		require.NoError(t, err)
		assert.Equal(t, Estimate{}, estimate)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := CrossCorrelate(ref, ref, 0, Band{})
		assert.Error(t, err)
		_, err = CrossCorrelate(nil, ref, 48000, Band{})
		assert.Error(t, err)
		_, err = CrossCorrelate(ref, nil, 48000, Band{})
		assert.Error(t, err)
	})
}

func TestBandBins(t *testing.T) {
	lo, hi := Band{}.bins(1024, 48000)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 512, hi)

	lo, hi = Band{MinFreq: 100, MaxFreq: 12000}.bins(1024, 48000)
	assert.Equal(t, 2, lo)
	assert.Equal(t, 256, hi)

	// above Nyquist is open
	_, hi = Band{MaxFreq: 30000}.bins(1024, 48000)
	assert.Equal(t, 512, hi)
}

func TestParabolicOffset(t *testing.T) {
	assert.Equal(t, 0.0, parabolicOffset(1, 2, 1))
	assert.Equal(t, 0.0, parabolicOffset(1, 1, 1))
	// y = -(x - 0.25)^2
	assert.InDelta(t, 0.25, parabolicOffset(-1.5625, -0.0625, -0.5625), 1e-12)
}
