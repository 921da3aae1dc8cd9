package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned for malformed template, frequency
	// or duty cycle arguments.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidChannelSpec is returned when a channel index is negative
	// or out of bounds of the buffer.
	ErrInvalidChannelSpec = errors.New("invalid channel specification")

	// ErrChannelOverlap is returned when a channel is owned by more than one device.
	ErrChannelOverlap = errors.New("some channels may have been specified twice across different devices")

	// ErrDeviceMappingMismatch is returned when device mappings disagree
	// with each other or with the buffer.
	ErrDeviceMappingMismatch = errors.New("device mapping mismatch")

	// ErrNoSyncSignalFound is returned when no sync peaks were detected.
	ErrNoSyncSignalFound = errors.New("no sync signal found")

	// ErrInsufficientData is returned when a recording is too short to be analyzed.
	ErrInsufficientData = errors.New("insufficient data")
)

// ChannelOverlapError names the two devices which claim the same channels.
type ChannelOverlapError struct {
	DeviceA  DeviceID
	DeviceB  DeviceID
	Channels ChannelSet
}

func (e *ChannelOverlapError) Error() string {
	return fmt.Sprintf("%v: devices '%s' and '%s' share channels %v", ErrChannelOverlap, e.DeviceA, e.DeviceB, []int(e.Channels))
}

func (e *ChannelOverlapError) Unwrap() error {
	return ErrChannelOverlap
}

// DeviceError attributes an error to a device.
type DeviceError struct {
	Device DeviceID
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device '%s': %v", e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
