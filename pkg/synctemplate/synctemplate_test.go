package synctemplate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	timealigntypes "github.com/xaionaro-go/audiosync/pkg/timealign/types"
)

func TestDefault(t *testing.T) {
	tmpl, err := Default(192000)
	require.NoError(t, err)
	require.Len(t, tmpl.Samples, 7680)
	assert.Equal(t, 7680.0, tmpl.Period())

	for i, v := range tmpl.Samples {
		if i < 3840 {
			require.Equal(t, -1.0, v, "sample #%d", i)
		} else {
			require.Equal(t, 1.0, v, "sample #%d", i)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("duty_cycle", func(t *testing.T) {
		tmpl, err := New(Params{
			Frequency:  1000,
			SampleRate: 8000,
			DutyCycle:  0.25,
			Cycles:     2,
			Phase:      0,
		})
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 1, -1, -1, -1, -1, -1, -1, 1, 1, -1, -1, -1, -1, -1, -1}, tmpl.Samples)
	})

	t.Run("rounded_length", func(t *testing.T) {
		tmpl, err := New(Params{
			Frequency:  30,
			SampleRate: 44100,
			DutyCycle:  0.5,
			Cycles:     1,
			Phase:      math.Pi,
		})
		require.NoError(t, err)
		assert.Len(t, tmpl.Samples, 1470)
		assert.Equal(t, -1.0, tmpl.Samples[0])
		assert.Equal(t, 1.0, tmpl.Samples[len(tmpl.Samples)-1])
	})

	for name, params := range map[string]Params{
		"zero_frequency":     {Frequency: 0, SampleRate: 8000, DutyCycle: 0.5, Cycles: 1},
		"negative_frequency": {Frequency: -1, SampleRate: 8000, DutyCycle: 0.5, Cycles: 1},
		"zero_sample_rate":   {Frequency: 25, SampleRate: 0, DutyCycle: 0.5, Cycles: 1},
		"duty_cycle_zero":    {Frequency: 25, SampleRate: 8000, DutyCycle: 0, Cycles: 1},
		"duty_cycle_one":     {Frequency: 25, SampleRate: 8000, DutyCycle: 1, Cycles: 1},
		"zero_cycles":        {Frequency: 25, SampleRate: 8000, DutyCycle: 0.5, Cycles: 0},
		"too_short":          {Frequency: 100000, SampleRate: 8000, DutyCycle: 0.5, Cycles: 1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := New(params)
			assert.ErrorIs(t, err, timealigntypes.ErrInvalidParameter)
		})
	}
}

func TestTile(t *testing.T) {
	tmpl, err := FromSamples([]float64{-1, 1}, 4000, 8000)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 1, -1, 1, -1, 1}, tmpl.Tile(3))
	assert.Empty(t, tmpl.Tile(0))
}

func TestFromSamples(t *testing.T) {
	_, err := FromSamples(nil, 25, 8000)
	assert.ErrorIs(t, err, timealigntypes.ErrInvalidParameter)
	_, err = FromSamples([]float64{1}, 0, 8000)
	assert.ErrorIs(t, err, timealigntypes.ErrInvalidParameter)
}
