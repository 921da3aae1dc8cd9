package syncinfo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/audiosync/pkg/audio/multichannel"
	"github.com/xaionaro-go/audiosync/pkg/synctemplate"
	"github.com/xaionaro-go/audiosync/pkg/timealign/types"
	"gopkg.in/yaml.v3"
)

func testRecording(t *testing.T, cycles int) *multichannel.Buffer {
	tmpl, err := synctemplate.Default(192000)
	require.NoError(t, err)

	sync := append(make([]float64, 1000), tmpl.Tile(cycles)...)
	sync = append(sync, make([]float64, 500)...)
	other := make([]float64, len(sync))
	for i := range other {
		other[i] = 0.01
	}

	buf, err := multichannel.FromChannels(192000, other, sync)
	require.NoError(t, err)
	return buf
}

func TestCountSyncPulses(t *testing.T) {
	buf := testRecording(t, 10)
	assert.Equal(t, 10, CountSyncPulses(buf.Channel(1), DefaultConfig()))
	assert.Equal(t, 0, CountSyncPulses(buf.Channel(0), DefaultConfig()))

	tmpl, err := synctemplate.Default(192000)
	require.NoError(t, err)
	// the pulses cut by the start and the end of the recording are not counted
	truncated := tmpl.Tile(4)[5000 : 4*7680-100]
	assert.Equal(t, 2, CountSyncPulses(truncated, DefaultConfig()))
}

func TestDescribe(t *testing.T) {
	buf := testRecording(t, 25)
	info, err := Describe(buf, 25, []int{1}, DefaultConfig())
	require.NoError(t, err)

	frames := 1000 + 25*7680 + 500
	assert.Equal(t, frames, info.Frames)
	assert.Equal(t, 2, info.Channels)
	assert.EqualValues(t, 192000, info.SampleRate)
	assert.InDelta(t, float64(frames)/192000, info.Duration.Seconds(), 1e-6)
	assert.Equal(t, 25, info.ExpectedVideoFrames)
	assert.Equal(t, map[int]int{1: 25}, info.SyncPulses)

	out, err := yaml.Marshal(info)
	require.NoError(t, err)
	assert.Contains(t, string(out), "expected_video_frames: 25")
	assert.Contains(t, string(out), "duration: "+info.Duration.String())

	t.Run("no_sync_channels", func(t *testing.T) {
		info, err := Describe(buf, 30, nil, DefaultConfig())
		require.NoError(t, err)
		assert.Nil(t, info.SyncPulses)
		assert.Equal(t, 30, info.ExpectedVideoFrames)
		assert.Less(t, info.Duration, 2*time.Second)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := Describe(buf, 0, nil, DefaultConfig())
		assert.ErrorIs(t, err, types.ErrInvalidParameter)
		_, err = Describe(buf, 25, []int{2}, DefaultConfig())
		assert.ErrorIs(t, err, types.ErrInvalidChannelSpec)
	})
}
