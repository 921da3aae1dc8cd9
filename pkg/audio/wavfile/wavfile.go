// Package wavfile reads and writes multichannel buffers as integer PCM WAV files.
package wavfile

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/xaionaro-go/audiosync/pkg/audio/multichannel"
	"github.com/xaionaro-go/audiosync/pkg/audio/types"
)

const (
	wavFormatPCM       = 1
	wavFormatIEEEFloat = 3
)

// Read decodes the WAV file at the given path.
func Read(path string) (*multichannel.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	buf, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("unable to decode '%s': %w", path, err)
	}
	return buf, nil
}

// Decode reads a whole integer PCM WAV stream; the samples are
// normalized to [-1, 1].
func Decode(r io.ReadSeeker) (*multichannel.Buffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}
	if decoder.WavAudioFormat == wavFormatIEEEFloat {
		return nil, fmt.Errorf("floating point WAV files are not supported")
	}

	pcmBuf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("unable to read the PCM data: %w", err)
	}

	bitDepth := int(decoder.BitDepth)
	scale, err := fullScale(bitDepth)
	if err != nil {
		return nil, err
	}
	offset := 0.0
	if bitDepth == 8 {
		// 8-bit WAV samples are unsigned
		offset = scale
	}

	channels := int(decoder.NumChans)
	if channels == 0 {
		return nil, fmt.Errorf("the file has no channels")
	}
	samples := make([]float64, len(pcmBuf.Data))
	for idx, v := range pcmBuf.Data {
		samples[idx] = (float64(v) - offset) / scale
	}

	buf, err := multichannel.FromInterleaved(types.SampleRate(decoder.SampleRate), channels, samples)
	if err != nil {
		return nil, fmt.Errorf("unable to deinterleave the samples: %w", err)
	}
	return buf, nil
}

// Write encodes the buffer into a WAV file at the given path.
func Write(path string, buf *multichannel.Buffer, bitDepth int) (_err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create '%s': %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil && _err == nil {
			_err = fmt.Errorf("unable to close '%s': %w", path, err)
		}
	}()

	return Encode(f, buf, bitDepth)
}

// Encode writes the buffer as an integer PCM WAV stream of the given bit
// depth (8, 16, 24 or 32). Samples outside of [-1, 1] are clipped.
func Encode(w io.WriteSeeker, buf *multichannel.Buffer, bitDepth int) error {
	scale, err := fullScale(bitDepth)
	if err != nil {
		return err
	}
	offset := 0.0
	if bitDepth == 8 {
		offset = scale
	}

	interleaved := buf.Interleaved()
	data := make([]int, len(interleaved))
	for idx, v := range interleaved {
		v = math.Round(v*scale) + offset
		data[idx] = int(max(offset-scale, min(v, offset+scale-1)))
	}

	encoder := wav.NewEncoder(w, int(buf.SampleRate()), bitDepth, buf.Channels(), wavFormatPCM)
	err = encoder.Write(&audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: buf.Channels(),
			SampleRate:  int(buf.SampleRate()),
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		return fmt.Errorf("unable to write the samples: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("unable to finalize the WAV stream: %w", err)
	}
	return nil
}

func fullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
		return float64(uint64(1) << (bitDepth - 1)), nil
	default:
		return 0, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
}
