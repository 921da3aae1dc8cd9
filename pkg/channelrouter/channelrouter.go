// Package channelrouter selects channels of a multichannel buffer and
// validates device-to-channel mappings.
package channelrouter

import (
	"fmt"

	"github.com/xaionaro-go/audiosync/pkg/audio/multichannel"
	"github.com/xaionaro-go/audiosync/pkg/timealign/types"
)

// SelectChannels returns a buffer with only the given channels (in the
// given order).
func SelectChannels(
	indices []int,
	buf *multichannel.Buffer,
) (*multichannel.Buffer, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: no channels selected", types.ErrInvalidChannelSpec)
	}
	if err := checkIndices(indices, buf.Channels()); err != nil {
		return nil, err
	}
	return buf.SubsetChannels(indices), nil
}

func checkIndices(indices []int, channels int) error {
	for _, idx := range indices {
		if idx < 0 || idx >= channels {
			return fmt.Errorf("%w: channel %d is out of range [0, %d)", types.ErrInvalidChannelSpec, idx, channels)
		}
	}
	return nil
}

// CheckForChannelOverlap returns nil if no channel is owned by more than
// one device. Otherwise it returns a *types.ChannelOverlapError naming the
// first conflicting pair of devices (in the sorted device order).
func CheckForChannelOverlap(devices types.DeviceChannels) error {
	deviceIDs := devices.DeviceIDs()
	for i, deviceA := range deviceIDs {
		for _, deviceB := range deviceIDs[i+1:] {
			common := devices[deviceA].Intersect(devices[deviceB])
			if len(common) == 0 {
				continue
			}
			return &types.ChannelOverlapError{
				DeviceA:  deviceA,
				DeviceB:  deviceB,
				Channels: common,
			}
		}
	}
	return nil
}

// SplitByDevice returns the channels of each device as a separate buffer.
func SplitByDevice(
	buf *multichannel.Buffer,
	devices types.DeviceChannels,
) (map[types.DeviceID]*multichannel.Buffer, error) {
	result := make(map[types.DeviceID]*multichannel.Buffer, len(devices))
	for _, deviceID := range devices.DeviceIDs() {
		sub, err := SelectChannels(devices[deviceID], buf)
		if err != nil {
			return nil, &types.DeviceError{Device: deviceID, Err: err}
		}
		result[deviceID] = sub
	}
	return result, nil
}
