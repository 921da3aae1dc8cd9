package alignment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/audiosync/pkg/audio/multichannel"
	"github.com/xaionaro-go/audiosync/pkg/timealign/types"
)

// delayedBuffer returns a buffer where channel ch holds the ramp
// 0, 1, 2, ... delayed by delays[ch] samples (zeros before).
func delayedBuffer(t *testing.T, frames int, delays ...int) *multichannel.Buffer {
	channels := make([][]float64, len(delays))
	for ch, delay := range delays {
		channels[ch] = make([]float64, frames)
		for frame := delay; frame < frames; frame++ {
			channels[ch][frame] = float64(frame - delay + 1)
		}
	}
	buf, err := multichannel.FromChannels(1000, channels...)
	require.NoError(t, err)
	return buf
}

func TestAlignChannels(t *testing.T) {
	t.Run("sync_equality", func(t *testing.T) {
		buf := delayedBuffer(t, 100, 3, 3, 10, 10, 10)
		devices := types.DeviceChannels{
			"1": {0, 1},
			"2": {2, 3, 4},
		}
		cutPoints := types.CutPoints{"1": 3, "2": 10}

		out, err := AlignChannels(buf, devices, cutPoints)
		require.NoError(t, err)
		assert.Equal(t, 90, out.Frames())
		assert.Equal(t, 5, out.Channels())
		assert.Equal(t, buf.SampleRate(), out.SampleRate())
		for ch := 1; ch < out.Channels(); ch++ {
			assert.Equal(t, out.Channel(0), out.Channel(ch), "channel %d", ch)
		}
		assert.Equal(t, 1.0, out.Sample(0, 0))
		assert.Equal(t, 90.0, out.Sample(89, 4))
	})

	t.Run("length_invariant", func(t *testing.T) {
		buf := delayedBuffer(t, 50, 0, 0, 0)
		for _, cuts := range [][3]int{{0, 0, 0}, {1, 2, 3}, {49, 0, 10}, {5, 5, 5}} {
			devices := types.DeviceChannels{"a": {0}, "b": {1}, "c": {2}}
			cutPoints := types.CutPoints{"a": cuts[0], "b": cuts[1], "c": cuts[2]}
			out, err := AlignChannels(buf, devices, cutPoints)
			require.NoError(t, err)
			assert.Equal(t, 50-max(cuts[0], cuts[1], cuts[2]), out.Frames(), "%v", cuts)
		}
	})

	t.Run("channel_order", func(t *testing.T) {
		data := [][]float64{
			{0, 0, 10, 11, 12, 13},
			{0, 20, 21, 22, 23, 24},
			{0, 0, 30, 31, 32, 33},
			{40, 41, 42, 43, 44, 45},
		}
		buf, err := multichannel.FromChannels(1000, data...)
		require.NoError(t, err)

		out, err := AlignChannels(buf, types.DeviceChannels{
			"b": {1},
			"a": {2, 0},
		}, types.CutPoints{"a": 2, "b": 1})
		require.NoError(t, err)
		require.Equal(t, 4, out.Channels())
		require.Equal(t, 4, out.Frames())
		assert.Equal(t, []float64{10, 11, 12, 13}, out.Channel(0))
		assert.Equal(t, []float64{20, 21, 22, 23}, out.Channel(1))
		assert.Equal(t, []float64{30, 31, 32, 33}, out.Channel(2))
		assert.Equal(t, []float64{0, 0, 0, 0}, out.Channel(3), "unowned channels are zero")
	})

	t.Run("input_untouched", func(t *testing.T) {
		buf := delayedBuffer(t, 10, 0, 2)
		before := buf.Interleaved()
		_, err := AlignChannels(buf, types.DeviceChannels{"1": {0}, "2": {1}}, types.CutPoints{"1": 0, "2": 2})
		require.NoError(t, err)
		assert.Equal(t, before, buf.Interleaved())
	})

	t.Run("mapping_mismatch", func(t *testing.T) {
		buf := delayedBuffer(t, 10, 0, 0)
		for name, cutPoints := range map[string]types.CutPoints{
			"missing_device": {"1": 0},
			"extra_device":   {"1": 0, "2": 0, "3": 0},
			"other_device":   {"1": 0, "3": 0},
			"negative_cut":   {"1": -1, "2": 0},
			"cut_at_end":     {"1": 0, "2": 10},
		} {
			t.Run(name, func(t *testing.T) {
				_, err := AlignChannels(buf, types.DeviceChannels{"1": {0}, "2": {1}}, cutPoints)
				assert.ErrorIs(t, err, types.ErrDeviceMappingMismatch)
			})
		}

		_, err := AlignChannels(buf, types.DeviceChannels{}, types.CutPoints{})
		assert.ErrorIs(t, err, types.ErrDeviceMappingMismatch)
	})

	t.Run("bad_channel", func(t *testing.T) {
		buf := delayedBuffer(t, 10, 0, 0)
		_, err := AlignChannels(buf, types.DeviceChannels{"1": {0}, "2": {2}}, types.CutPoints{"1": 0, "2": 0})
		assert.ErrorIs(t, err, types.ErrInvalidChannelSpec)
	})
}

func BenchmarkAlignChannels(b *testing.B) {
	channels := make([][]float64, 16)
	for ch := range channels {
		channels[ch] = make([]float64, 192000)
	}
	buf, err := multichannel.FromChannels(192000, channels...)
	if err != nil {
		b.Fatal(err)
	}
	devices := types.DeviceChannels{
		"1": {0, 1, 2, 3, 4, 5, 6, 7},
		"2": {8, 9, 10, 11, 12, 13, 14, 15},
	}
	cutPoints := types.CutPoints{"1": 38400, "2": 38700}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := AlignChannels(buf, devices, cutPoints)
		if err != nil {
			b.Fatal(err)
		}
	}
}
