// Package alignment trims the channels of every device at the device's
// cut point, so that all the devices share a common time origin.
package alignment

import (
	"fmt"
	"math"

	"github.com/xaionaro-go/audiosync/pkg/audio/multichannel"
	"github.com/xaionaro-go/audiosync/pkg/timealign/types"
)

// AlignChannels drops the samples before each device's cut point and
// truncates all channels to the shortest remainder. The output keeps the
// channel count and order of the input; channels not owned by any device
// are zero.
func AlignChannels(
	buf *multichannel.Buffer,
	devices types.DeviceChannels,
	cutPoints types.CutPoints,
) (*multichannel.Buffer, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: no devices", types.ErrDeviceMappingMismatch)
	}
	if !types.SameDevices(devices, cutPoints) {
		return nil, fmt.Errorf("%w: devices %v have channels, but devices %v have cut points", types.ErrDeviceMappingMismatch, devices.DeviceIDs(), cutPoints.DeviceIDs())
	}

	frames := buf.Frames()
	commonLength := math.MaxInt
	for _, deviceID := range devices.DeviceIDs() {
		cut := cutPoints[deviceID]
		if cut < 0 || cut >= frames {
			return nil, fmt.Errorf("%w: the cut point %d of device '%s' is out of range [0, %d)", types.ErrDeviceMappingMismatch, cut, deviceID, frames)
		}
		for _, ch := range devices[deviceID] {
			if ch < 0 || ch >= buf.Channels() {
				return nil, fmt.Errorf("%w: device '%s' channel %d is out of range [0, %d)", types.ErrInvalidChannelSpec, deviceID, ch, buf.Channels())
			}
		}
		commonLength = min(commonLength, frames-cut)
	}

	output := make([][]float64, buf.Channels())
	for _, deviceID := range devices.DeviceIDs() {
		cut := cutPoints[deviceID]
		for _, ch := range devices[deviceID] {
			output[ch] = make([]float64, commonLength)
			copy(output[ch], buf.Channel(ch)[cut:cut+commonLength])
		}
	}
	for ch := range output {
		if output[ch] == nil {
			output[ch] = make([]float64, commonLength)
		}
	}

	return multichannel.FromChannels(buf.SampleRate(), output...)
}
