// Package pcm converts raw PCM byte streams into normalized float64
// samples (and back).
package pcm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/xaionaro-go/audiosync/pkg/audio/types"
)

// Decode converts the raw PCM bytes into samples in range [-1, 1].
//
// The amount of bytes must be a multiple of the sample size. Interleaving
// is preserved: for multichannel data the result is interleaved as well.
func Decode(format types.PCMFormat, data []byte) ([]float64, error) {
	sampleSize := int(format.Size())
	if sampleSize == 0 {
		return nil, fmt.Errorf("unsupported PCM format: %v", format)
	}
	if len(data)%sampleSize != 0 {
		return nil, fmt.Errorf("the amount of bytes (%d) is not a multiple of the sample size (%d)", len(data), sampleSize)
	}

	samples := make([]float64, len(data)/sampleSize)
	for idx := range samples {
		samples[idx] = getFloat64(format, data[idx*sampleSize:])
	}
	return samples, nil
}

// Encode converts the samples into raw PCM bytes. Samples outside
// of range [-1, 1] are clipped.
func Encode(format types.PCMFormat, samples []float64) ([]byte, error) {
	sampleSize := int(format.Size())
	if sampleSize == 0 {
		return nil, fmt.Errorf("unsupported PCM format: %v", format)
	}

	data := make([]byte, len(samples)*sampleSize)
	for idx, v := range samples {
		setFloat64(format, data[idx*sampleSize:], clip(v))
	}
	return data, nil
}

func clip(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}

func getFloat64(f types.PCMFormat, p []byte) float64 {
	switch f {
	case types.PCMFormatU8:
		return (float64(p[0]) - 128) / 128
	case types.PCMFormatS16LE:
		return float64(int16(binary.LittleEndian.Uint16(p))) / 32768
	case types.PCMFormatS16BE:
		return float64(int16(binary.BigEndian.Uint16(p))) / 32768
	case types.PCMFormatS24LE:
		return float64(signExtend24(uint32(p[0])|uint32(p[1])<<8|uint32(p[2])<<16)) / 8388608
	case types.PCMFormatS24BE:
		return float64(signExtend24(uint32(p[2])|uint32(p[1])<<8|uint32(p[0])<<16)) / 8388608
	case types.PCMFormatS32LE:
		return float64(int32(binary.LittleEndian.Uint32(p))) / 2147483648
	case types.PCMFormatS32BE:
		return float64(int32(binary.BigEndian.Uint32(p))) / 2147483648
	case types.PCMFormatS64LE:
		return float64(int64(binary.LittleEndian.Uint64(p))) / 9223372036854775808
	case types.PCMFormatS64BE:
		return float64(int64(binary.BigEndian.Uint64(p))) / 9223372036854775808
	case types.PCMFormatFloat32LE:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(p)))
	case types.PCMFormatFloat32BE:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(p)))
	case types.PCMFormatFloat64LE:
		return math.Float64frombits(binary.LittleEndian.Uint64(p))
	case types.PCMFormatFloat64BE:
		return math.Float64frombits(binary.BigEndian.Uint64(p))
	default:
		panic(fmt.Sprintf("unknown format: %v", f))
	}
}

func signExtend24(v uint32) int32 {
	val := int32(v)
	if val&0x800000 != 0 {
		val |= -16777216
	}
	return val
}

func setFloat64(f types.PCMFormat, p []byte, v float64) {
	switch f {
	case types.PCMFormatU8:
		p[0] = byte(min(math.Round(v*128+128), 255))
	case types.PCMFormatS16LE:
		binary.LittleEndian.PutUint16(p, uint16(int16(min(math.Round(v*32768), math.MaxInt16))))
	case types.PCMFormatS16BE:
		binary.BigEndian.PutUint16(p, uint16(int16(min(math.Round(v*32768), math.MaxInt16))))
	case types.PCMFormatS24LE:
		val := int32(min(math.Round(v*8388608), 8388607))
		p[0] = byte(val)
		p[1] = byte(val >> 8)
		p[2] = byte(val >> 16)
	case types.PCMFormatS24BE:
		val := int32(min(math.Round(v*8388608), 8388607))
		p[0] = byte(val >> 16)
		p[1] = byte(val >> 8)
		p[2] = byte(val)
	case types.PCMFormatS32LE:
		binary.LittleEndian.PutUint32(p, uint32(int32(min(math.Round(v*2147483648), math.MaxInt32))))
	case types.PCMFormatS32BE:
		binary.BigEndian.PutUint32(p, uint32(int32(min(math.Round(v*2147483648), math.MaxInt32))))
	case types.PCMFormatS64LE:
		binary.LittleEndian.PutUint64(p, uint64(s64(v)))
	case types.PCMFormatS64BE:
		binary.BigEndian.PutUint64(p, uint64(s64(v)))
	case types.PCMFormatFloat32LE:
		binary.LittleEndian.PutUint32(p, math.Float32bits(float32(v)))
	case types.PCMFormatFloat32BE:
		binary.BigEndian.PutUint32(p, math.Float32bits(float32(v)))
	case types.PCMFormatFloat64LE:
		binary.LittleEndian.PutUint64(p, math.Float64bits(v))
	case types.PCMFormatFloat64BE:
		binary.BigEndian.PutUint64(p, math.Float64bits(v))
	default:
		panic(fmt.Sprintf("unknown format: %v", f))
	}
}

func s64(v float64) int64 {
	if v >= 1 {
		return math.MaxInt64
	}
	return int64(math.Round(v * 9223372036854775808))
}
