// Package multichannel implements an in-memory multichannel recording:
// a fixed amount of channels sharing the same frame count and sample rate.
package multichannel

import (
	"fmt"

	"github.com/xaionaro-go/audiosync/pkg/audio/planar"
	"github.com/xaionaro-go/audiosync/pkg/audio/types"
)

// Buffer is a frames × channels matrix of samples normalized to [-1, 1].
//
// Samples are stored planar (one slice per channel). A Buffer is never
// modified after construction by any function of this module.
type Buffer struct {
	sampleRate types.SampleRate
	channels   [][]float64
	frames     int
}

// New returns a zero-filled buffer.
func New(sampleRate types.SampleRate, channels, frames int) (*Buffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("the amount of channels must be positive, got %d", channels)
	}
	if frames < 0 {
		return nil, fmt.Errorf("the amount of frames must not be negative, got %d", frames)
	}
	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
	}
	return &Buffer{
		sampleRate: sampleRate,
		channels:   data,
		frames:     frames,
	}, nil
}

// FromChannels wraps per-channel sample slices into a Buffer. The slices
// are not copied and must not be modified afterwards.
func FromChannels(sampleRate types.SampleRate, channels ...[]float64) (*Buffer, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("at least one channel is required")
	}
	frames := len(channels[0])
	for ch, samples := range channels {
		if len(samples) != frames {
			return nil, fmt.Errorf("channel #%d has %d frames, while channel #0 has %d", ch, len(samples), frames)
		}
	}
	return &Buffer{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
	}, nil
}

// FromInterleaved builds a Buffer from interleaved frames.
func FromInterleaved(sampleRate types.SampleRate, channels int, samples []float64) (*Buffer, error) {
	data, err := planar.Planarize(channels, samples)
	if err != nil {
		return nil, fmt.Errorf("unable to planarize: %w", err)
	}
	return FromChannels(sampleRate, data...)
}

func (b *Buffer) SampleRate() types.SampleRate {
	return b.sampleRate
}

// Frames returns the amount of samples per channel.
func (b *Buffer) Frames() int {
	return b.frames
}

// Channels returns the amount of channels.
func (b *Buffer) Channels() int {
	return len(b.channels)
}

// Channel returns the samples of the channel. The returned slice is a view
// into the buffer and must be treated as read-only.
func (b *Buffer) Channel(ch int) []float64 {
	return b.channels[ch][:b.frames:b.frames]
}

// Sample returns the sample at the given frame and channel.
func (b *Buffer) Sample(frame, ch int) float64 {
	return b.channels[ch][frame]
}

// Frame returns a copy of all channel samples at the given frame.
func (b *Buffer) Frame(frame int) []float64 {
	result := make([]float64, len(b.channels))
	for ch, samples := range b.channels {
		result[ch] = samples[frame]
	}
	return result
}

// Interleaved returns a copy of the samples as interleaved frames.
func (b *Buffer) Interleaved() []float64 {
	result, err := planar.Unplanarize(b.channels)
	if err != nil {
		// all channels have the same length by construction
		panic(err)
	}
	return result
}

// Slice returns a view of the frames [start, end) of all channels.
func (b *Buffer) Slice(start, end int) (*Buffer, error) {
	if start < 0 || end > b.frames || start > end {
		return nil, fmt.Errorf("invalid frame range [%d, %d) for a buffer of %d frames", start, end, b.frames)
	}
	channels := make([][]float64, len(b.channels))
	for ch, samples := range b.channels {
		channels[ch] = samples[start:end:end]
	}
	return &Buffer{
		sampleRate: b.sampleRate,
		channels:   channels,
		frames:     end - start,
	}, nil
}

// SubsetChannels returns a view of the buffer with only the given channels,
// in the given order. Indices are not validated, see
// channelrouter.SelectChannels for the validating version.
func (b *Buffer) SubsetChannels(indices []int) *Buffer {
	channels := make([][]float64, len(indices))
	for idx, ch := range indices {
		channels[idx] = b.Channel(ch)
	}
	return &Buffer{
		sampleRate: b.sampleRate,
		channels:   channels,
		frames:     b.frames,
	}
}

// Without returns a view of the buffer without the given channels; the
// order of the remaining channels is preserved.
func (b *Buffer) Without(indices ...int) *Buffer {
	drop := make(map[int]struct{}, len(indices))
	for _, ch := range indices {
		drop[ch] = struct{}{}
	}
	keep := make([]int, 0, len(b.channels))
	for ch := range b.channels {
		if _, ok := drop[ch]; !ok {
			keep = append(keep, ch)
		}
	}
	return b.SubsetChannels(keep)
}
