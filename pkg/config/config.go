// Package config loads the description of a multi-device recording
// (which channels belong to which device, and where the sync signal is)
// together with the alignment options from a YAML file.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/xaionaro-go/audiosync/pkg/audio/types"
	"github.com/xaionaro-go/audiosync/pkg/risingedge"
	"github.com/xaionaro-go/audiosync/pkg/synctemplate"
	"github.com/xaionaro-go/audiosync/pkg/timealign"
	timealigntypes "github.com/xaionaro-go/audiosync/pkg/timealign/types"
	"gopkg.in/yaml.v3"
)

// Config is the content of the configuration file.
type Config struct {
	// SyncFrequency is the frequency of the sync square wave in Hz.
	// Default: 25
	SyncFrequency float64 `yaml:"sync_frequency"`

	// DutyCycle is the duty cycle of the sync square wave.
	// Default: 0.5
	DutyCycle float64 `yaml:"duty_cycle"`

	// Threshold is the relative peak detection threshold.
	// Default: 0.6
	Threshold float64 `yaml:"threshold,omitempty"`

	// MinPeakSpacing is the minimal distance between sync cycles.
	// Default: one sync period minus one sample
	MinPeakSpacing time.Duration `yaml:"min_peak_spacing,omitempty"`

	// KeepSync retains the sync channels in the output.
	KeepSync bool `yaml:"keep_sync"`

	// CrossCheckWindow enables the delay cross-check over the given
	// amount of samples. Default: 0 (disabled)
	CrossCheckWindow int `yaml:"cross_check_window"`

	// Concurrency limits the amount of devices analyzed in parallel.
	// Default: 0 (the amount of CPUs)
	Concurrency int `yaml:"concurrency,omitempty"`

	Devices map[string]Device `yaml:"devices"`
}

// Device describes the channels of a single ADC.
type Device struct {
	// Channels are the indices of the channels in the recording;
	// a single integer is accepted as well.
	Channels ChannelList `yaml:"channels"`

	// Sync is the index of the channel (in the recording) carrying the
	// sync signal. It must be one of Channels.
	Sync *int `yaml:"sync"`
}

// ChannelList is a list of channel indices, which may be
// written in YAML as a single integer.
type ChannelList []int

func (l *ChannelList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var ch int
		if err := value.Decode(&ch); err != nil {
			return fmt.Errorf("%w: %v", timealigntypes.ErrInvalidChannelSpec, err)
		}
		*l = ChannelList{ch}
		return nil
	}
	var list []int
	if err := value.Decode(&list); err != nil {
		return fmt.Errorf("%w: %v", timealigntypes.ErrInvalidChannelSpec, err)
	}
	*l = list
	return nil
}

// DefaultConfig returns a Config with the default options and no devices.
func DefaultConfig() Config {
	return Config{
		SyncFrequency: synctemplate.DefaultFrequency,
		DutyCycle:     synctemplate.DefaultDutyCycle,
	}
}

// Load reads the configuration file at the given path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("unable to load '%s': %w", path, err)
	}
	return cfg, nil
}

// Parse parses the configuration from YAML.
func Parse(data []byte) (Config, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads the configuration from YAML, applies the defaults and
// validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes the configuration as YAML.
func (c Config) Encode(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("unable to encode YAML: %w", err)
	}
	return encoder.Close()
}

// Validate checks the options; the layout is validated against the
// recording only (see timealign.TimeAlignChannels).
func (c Config) Validate() error {
	if !(c.SyncFrequency > 0) {
		return fmt.Errorf("%w: sync_frequency must be positive, got %v", timealigntypes.ErrInvalidParameter, c.SyncFrequency)
	}
	if !(c.DutyCycle > 0 && c.DutyCycle < 1) {
		return fmt.Errorf("%w: duty_cycle must be within (0, 1), got %v", timealigntypes.ErrInvalidParameter, c.DutyCycle)
	}
	if c.Threshold < 0 || c.Threshold >= 1 {
		return fmt.Errorf("%w: threshold must be within [0, 1), got %v", timealigntypes.ErrInvalidParameter, c.Threshold)
	}
	if c.MinPeakSpacing < 0 {
		return fmt.Errorf("%w: min_peak_spacing must not be negative, got %v", timealigntypes.ErrInvalidParameter, c.MinPeakSpacing)
	}
	if c.CrossCheckWindow < 0 {
		return fmt.Errorf("%w: cross_check_window must not be negative, got %d", timealigntypes.ErrInvalidParameter, c.CrossCheckWindow)
	}
	if len(c.Devices) == 0 {
		return fmt.Errorf("%w: no devices defined", timealigntypes.ErrDeviceMappingMismatch)
	}
	for name, dev := range c.Devices {
		if dev.Sync == nil {
			return fmt.Errorf("%w: device '%s' has no sync channel", timealigntypes.ErrDeviceMappingMismatch, name)
		}
	}
	return nil
}

// Layout returns the device layout of the recording.
func (c Config) Layout() timealigntypes.Layout {
	layout := timealigntypes.Layout{
		Devices: make(timealigntypes.DeviceChannels, len(c.Devices)),
		Sync:    make(timealigntypes.SyncChannels, len(c.Devices)),
	}
	for name, dev := range c.Devices {
		deviceID := timealigntypes.DeviceID(name)
		layout.Devices[deviceID] = timealigntypes.ChannelSet(dev.Channels)
		if dev.Sync != nil {
			layout.Sync[deviceID] = *dev.Sync
		}
	}
	return layout
}

// TimeAlign returns the options for timealign.TimeAlignChannels for a
// recording with the given sample rate.
func (c Config) TimeAlign(sampleRate types.SampleRate) (timealign.Config, error) {
	params := synctemplate.DefaultParams(sampleRate)
	params.Frequency = c.SyncFrequency
	params.DutyCycle = c.DutyCycle
	tmpl, err := synctemplate.New(params)
	if err != nil {
		return timealign.Config{}, fmt.Errorf("unable to generate the sync template: %w", err)
	}

	return timealign.Config{
		Detection: risingedge.Config{
			Template:       tmpl,
			MinPeakSpacing: c.MinPeakSpacing,
			Threshold:      c.Threshold,
		},
		KeepSync:         c.KeepSync,
		Concurrency:      c.Concurrency,
		CrossCheckWindow: c.CrossCheckWindow,
	}, nil
}
