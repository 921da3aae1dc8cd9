package types

import (
	"fmt"
	"slices"
	"sort"
)

// DeviceID identifies a recording device (an ADC).
type DeviceID string

// ChannelSet is a set of channel indices within a multichannel buffer.
type ChannelSet []int

// Contains returns true if the set includes the channel.
func (s ChannelSet) Contains(channel int) bool {
	return slices.Contains(s, channel)
}

// Intersect returns the channels present in both sets, sorted.
func (s ChannelSet) Intersect(other ChannelSet) ChannelSet {
	var result ChannelSet
	for _, ch := range s {
		if other.Contains(ch) && !result.Contains(ch) {
			result = append(result, ch)
		}
	}
	slices.Sort(result)
	return result
}

// Duplicates returns the channels listed more than once, sorted.
func (s ChannelSet) Duplicates() ChannelSet {
	var result ChannelSet
	seen := make(map[int]struct{}, len(s))
	for _, ch := range s {
		if _, ok := seen[ch]; ok && !result.Contains(ch) {
			result = append(result, ch)
		}
		seen[ch] = struct{}{}
	}
	slices.Sort(result)
	return result
}

// DeviceChannels maps each device to the channels it owns.
type DeviceChannels map[DeviceID]ChannelSet

// DeviceIDs returns the devices in sorted order.
func (m DeviceChannels) DeviceIDs() []DeviceID {
	return sortedKeys(m)
}

// TotalChannels returns the sum of the sizes of all channel sets.
func (m DeviceChannels) TotalChannels() int {
	var total int
	for _, set := range m {
		total += len(set)
	}
	return total
}

// SyncChannels maps each device to its sync channel.
type SyncChannels map[DeviceID]int

// DeviceIDs returns the devices in sorted order.
func (m SyncChannels) DeviceIDs() []DeviceID {
	return sortedKeys(m)
}

// CutPoints maps each device to the sample index of its first rising edge.
type CutPoints map[DeviceID]int

// DeviceIDs returns the devices in sorted order.
func (m CutPoints) DeviceIDs() []DeviceID {
	return sortedKeys(m)
}

// SameDevices returns true if both maps have exactly the same keys.
func SameDevices[A, B any](a map[DeviceID]A, b map[DeviceID]B) bool {
	if len(a) != len(b) {
		return false
	}
	for deviceID := range a {
		if _, ok := b[deviceID]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[DeviceID]V) []DeviceID {
	result := make([]DeviceID, 0, len(m))
	for deviceID := range m {
		result = append(result, deviceID)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i] < result[j]
	})
	return result
}

// Layout describes which channels of a multichannel recording belong
// to which device, and which of them carries the sync signal.
type Layout struct {
	Devices DeviceChannels
	Sync    SyncChannels
}

// SyncChannelIndices returns the sync channels of all devices in device order.
func (l Layout) SyncChannelIndices() []int {
	result := make([]int, 0, len(l.Sync))
	for _, deviceID := range l.Sync.DeviceIDs() {
		result = append(result, l.Sync[deviceID])
	}
	return result
}

// Validate checks the structural consistency of the layout against a
// buffer with totalChannels channels. Channel overlaps are checked
// separately (see channelrouter.CheckForChannelOverlap).
func (l Layout) Validate(totalChannels int) error {
	if len(l.Devices) == 0 {
		return fmt.Errorf("%w: no devices defined", ErrDeviceMappingMismatch)
	}
	if len(l.Devices) != len(l.Sync) {
		return fmt.Errorf("%w: %d devices have channels, but %d devices have a sync channel", ErrDeviceMappingMismatch, len(l.Devices), len(l.Sync))
	}
	if !SameDevices(l.Devices, l.Sync) {
		return fmt.Errorf("%w: the devices of the channel mapping %v and of the sync mapping %v differ", ErrDeviceMappingMismatch, l.Devices.DeviceIDs(), l.Sync.DeviceIDs())
	}
	if total := l.Devices.TotalChannels(); total != totalChannels {
		return fmt.Errorf("%w: the devices own %d channels in total, but the buffer has %d", ErrDeviceMappingMismatch, total, totalChannels)
	}
	for _, deviceID := range l.Devices.DeviceIDs() {
		channels := l.Devices[deviceID]
		if len(channels) == 0 {
			return fmt.Errorf("%w: device '%s' owns no channels", ErrInvalidChannelSpec, deviceID)
		}
		for _, ch := range channels {
			if ch < 0 || ch >= totalChannels {
				return fmt.Errorf("%w: device '%s' channel %d is out of range [0, %d)", ErrInvalidChannelSpec, deviceID, ch, totalChannels)
			}
		}
		if dups := channels.Duplicates(); len(dups) > 0 {
			return fmt.Errorf("%w: device '%s' lists the channels %v more than once", ErrInvalidChannelSpec, deviceID, []int(dups))
		}
		if syncCh := l.Sync[deviceID]; !channels.Contains(syncCh) {
			return fmt.Errorf("%w: the sync channel %d of device '%s' is not one of its channels %v", ErrDeviceMappingMismatch, syncCh, deviceID, []int(channels))
		}
	}
	return nil
}
