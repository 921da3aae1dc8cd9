// Package syncinfo summarizes a sync recording: its duration, the amount
// of video frames the sync signal should have triggered, and the amount
// of sync pulses actually recorded.
package syncinfo

import (
	"fmt"
	"time"

	"github.com/xaionaro-go/audiosync/pkg/audio/multichannel"
	audiotypes "github.com/xaionaro-go/audiosync/pkg/audio/types"
	"github.com/xaionaro-go/audiosync/pkg/peaks"
	"github.com/xaionaro-go/audiosync/pkg/timealign/types"
)

const (
	DefaultThreshold   = 0.8
	DefaultMinDistance = 7000
)

type Config struct {
	Threshold   float64
	MinDistance int
}

func DefaultConfig() Config {
	return Config{
		Threshold:   DefaultThreshold,
		MinDistance: DefaultMinDistance,
	}
}

// CountSyncPulses returns the amount of high pulses of the square wave
// recorded in the channel.
func CountSyncPulses(channel []float64, cfg Config) int {
	return len(peaks.Indexes(channel, cfg.Threshold, cfg.MinDistance))
}

type Info struct {
	Frames              int                   `yaml:"frames"`
	SampleRate          audiotypes.SampleRate `yaml:"sample_rate"`
	Channels            int                   `yaml:"channels"`
	Duration            time.Duration         `yaml:"duration"`
	ExpectedVideoFrames int                   `yaml:"expected_video_frames"`
	SyncPulses          map[int]int           `yaml:"sync_pulses,omitempty"`
}

// Describe returns the summary of the recording; the pulses are counted
// on each of syncChannels.
func Describe(
	buf *multichannel.Buffer,
	syncFrequency float64,
	syncChannels []int,
	cfg Config,
) (Info, error) {
	if !(syncFrequency > 0) {
		return Info{}, fmt.Errorf("%w: sync frequency must be positive, got %v", types.ErrInvalidParameter, syncFrequency)
	}
	if buf.SampleRate() == 0 {
		return Info{}, fmt.Errorf("%w: unknown sample rate", types.ErrInvalidParameter)
	}

	seconds := float64(buf.Frames()) / float64(buf.SampleRate())
	info := Info{
		Frames:              buf.Frames(),
		SampleRate:          buf.SampleRate(),
		Channels:            buf.Channels(),
		Duration:            time.Duration(seconds * float64(time.Second)),
		ExpectedVideoFrames: int(syncFrequency * seconds),
	}
	if len(syncChannels) == 0 {
		return info, nil
	}

	info.SyncPulses = make(map[int]int, len(syncChannels))
	for _, ch := range syncChannels {
		if ch < 0 || ch >= buf.Channels() {
			return Info{}, fmt.Errorf("%w: channel %d is out of range [0, %d)", types.ErrInvalidChannelSpec, ch, buf.Channels())
		}
		info.SyncPulses[ch] = CountSyncPulses(buf.Channel(ch), cfg)
	}
	return info, nil
}
