package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoDevices() Layout {
	return Layout{
		Devices: DeviceChannels{
			"1": {0, 1, 2, 3},
			"2": {4, 5, 6, 7},
		},
		Sync: SyncChannels{
			"1": 3,
			"2": 7,
		},
	}
}

func TestLayoutValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, twoDevices().Validate(8))
	})

	t.Run("channel_count_mismatch", func(t *testing.T) {
		err := twoDevices().Validate(9)
		assert.ErrorIs(t, err, ErrDeviceMappingMismatch)
	})

	t.Run("missing_sync", func(t *testing.T) {
		l := twoDevices()
		delete(l.Sync, "2")
		assert.ErrorIs(t, l.Validate(8), ErrDeviceMappingMismatch)
	})

	t.Run("different_devices", func(t *testing.T) {
		l := twoDevices()
		delete(l.Sync, "2")
		l.Sync["3"] = 7
		assert.ErrorIs(t, l.Validate(8), ErrDeviceMappingMismatch)
	})

	t.Run("sync_not_owned", func(t *testing.T) {
		l := twoDevices()
		l.Sync["1"] = 7
		assert.ErrorIs(t, l.Validate(8), ErrDeviceMappingMismatch)
	})

	t.Run("negative_channel", func(t *testing.T) {
		l := twoDevices()
		l.Devices["1"] = ChannelSet{-1, 1, 2, 3}
		assert.ErrorIs(t, l.Validate(8), ErrInvalidChannelSpec)
	})

	t.Run("duplicate_channel", func(t *testing.T) {
		// the total still matches the buffer, but channel 1 is owned by nobody
		l := twoDevices()
		l.Devices["1"] = ChannelSet{0, 0, 2, 3}
		err := l.Validate(8)
		assert.ErrorIs(t, err, ErrInvalidChannelSpec)
		assert.Contains(t, err.Error(), "[0]")
	})
}

func TestChannelSetDuplicates(t *testing.T) {
	assert.Empty(t, ChannelSet{0, 1, 2}.Duplicates())
	assert.Equal(t, ChannelSet{1, 3}, ChannelSet{3, 1, 3, 1, 1, 0}.Duplicates())
}

func TestChannelSetIntersect(t *testing.T) {
	assert.Equal(t, ChannelSet{2, 3}, ChannelSet{3, 0, 1, 2}.Intersect(ChannelSet{2, 3, 3}))
	assert.Empty(t, ChannelSet{0, 1}.Intersect(ChannelSet{2}))
}

func TestErrors(t *testing.T) {
	err := error(&DeviceError{
		Device: "2",
		Err: &ChannelOverlapError{
			DeviceA:  "1",
			DeviceB:  "2",
			Channels: ChannelSet{2, 3},
		},
	})
	assert.ErrorIs(t, err, ErrChannelOverlap)

	var overlapErr *ChannelOverlapError
	require.True(t, errors.As(err, &overlapErr))
	assert.Equal(t, DeviceID("1"), overlapErr.DeviceA)
	assert.Contains(t, err.Error(), "device '2'")
}

func TestSyncChannelIndices(t *testing.T) {
	assert.Equal(t, []int{3, 7}, twoDevices().SyncChannelIndices())
}
