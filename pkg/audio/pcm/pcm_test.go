package pcm

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/audiosync/pkg/audio/types"
)

func TestDecode(t *testing.T) {
	t.Run("U8", func(t *testing.T) {
		samples, err := Decode(types.PCMFormatU8, []byte{0, 128, 255})
		require.NoError(t, err)
		require.Len(t, samples, 3)
		assert.InDelta(t, -1.0, samples[0], 0.01)
		assert.InDelta(t, 0.0, samples[1], 0.01)
		assert.InDelta(t, 1.0, samples[2], 0.01)
	})

	t.Run("S16LE", func(t *testing.T) {
		data := make([]byte, 4)
		binary.LittleEndian.PutUint16(data[0:], uint16(16384))
		var neg int16 = -32768
		binary.LittleEndian.PutUint16(data[2:], uint16(neg))
		samples, err := Decode(types.PCMFormatS16LE, data)
		require.NoError(t, err)
		assert.Equal(t, []float64{0.5, -1}, samples)
	})

	t.Run("S24BE_negative", func(t *testing.T) {
		samples, err := Decode(types.PCMFormatS24BE, []byte{0xC0, 0x00, 0x00})
		require.NoError(t, err)
		assert.Equal(t, []float64{-0.5}, samples)
	})

	t.Run("Float32LE", func(t *testing.T) {
		data := make([]byte, 4)
		binary.LittleEndian.PutUint32(data, math.Float32bits(0.25))
		samples, err := Decode(types.PCMFormatFloat32LE, data)
		require.NoError(t, err)
		assert.Equal(t, []float64{0.25}, samples)
	})

	t.Run("misaligned", func(t *testing.T) {
		_, err := Decode(types.PCMFormatS16LE, []byte{1, 2, 3})
		assert.Error(t, err)
	})

	t.Run("undefined_format", func(t *testing.T) {
		_, err := Decode(types.PCMFormatUndefined, []byte{1})
		assert.Error(t, err)
	})
}

func TestEncodeDecode(t *testing.T) {
	input := []float64{-1, -0.5, 0, 0.25, 0.5, 0.999}
	for format := types.PCMFormatU8; format < types.EndOfPCMFormat; format++ {
		t.Run(format.String(), func(t *testing.T) {
			data, err := Encode(format, input)
			require.NoError(t, err)
			require.Len(t, data, len(input)*int(format.Size()))

			output, err := Decode(format, data)
			require.NoError(t, err)
			for idx := range input {
				assert.InDelta(t, input[idx], output[idx], 0.01, "sample #%d", idx)
			}
		})
	}
}

func TestEncodeClipping(t *testing.T) {
	data, err := Encode(types.PCMFormatS16LE, []float64{2, -2})
	require.NoError(t, err)
	assert.Equal(t, int16(math.MaxInt16), int16(binary.LittleEndian.Uint16(data[0:])))
	assert.Equal(t, int16(math.MinInt16), int16(binary.LittleEndian.Uint16(data[2:])))
}
