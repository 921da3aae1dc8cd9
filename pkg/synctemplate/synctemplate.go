// Package synctemplate generates the reference sync waveform: a bipolar
// square wave that is fed to every ADC and used as a correlation template.
package synctemplate

import (
	"fmt"
	"math"

	"github.com/xaionaro-go/audiosync/pkg/audio/types"
	timealigntypes "github.com/xaionaro-go/audiosync/pkg/timealign/types"
)

const (
	DefaultFrequency = 25
	DefaultDutyCycle = 0.5
	DefaultCycles    = 1

	// DefaultPhase makes the waveform start at its low level, so that the
	// first transition within a cycle is a rising edge.
	DefaultPhase = math.Pi
)

// Params describes the square wave. Use DefaultParams to get the
// documented defaults and override the fields as required.
type Params struct {
	Frequency  float64
	SampleRate types.SampleRate
	DutyCycle  float64
	Cycles     float64
	Phase      float64
}

// DefaultParams returns the parameters of one cycle of a 25Hz square wave
// with a 50% duty cycle starting at its low level.
func DefaultParams(sampleRate types.SampleRate) Params {
	return Params{
		Frequency:  DefaultFrequency,
		SampleRate: sampleRate,
		DutyCycle:  DefaultDutyCycle,
		Cycles:     DefaultCycles,
		Phase:      DefaultPhase,
	}
}

// Template is a sampled periodic sync waveform.
type Template struct {
	Samples    []float64
	Frequency  float64
	SampleRate types.SampleRate
}

// IsZero returns true if the template is not initialized.
func (t Template) IsZero() bool {
	return len(t.Samples) == 0
}

// Period returns the amount of samples in one cycle.
func (t Template) Period() float64 {
	return float64(t.SampleRate) / t.Frequency
}

// Tile returns the template repeated n times.
func (t Template) Tile(n int) []float64 {
	result := make([]float64, 0, len(t.Samples)*n)
	for range n {
		result = append(result, t.Samples...)
	}
	return result
}

// FromSamples wraps a custom waveform (for example, a sync signal cut out
// of a real recording) into a Template.
func FromSamples(samples []float64, frequency float64, sampleRate types.SampleRate) (Template, error) {
	if len(samples) == 0 {
		return Template{}, fmt.Errorf("%w: empty template", timealigntypes.ErrInvalidParameter)
	}
	if !(frequency > 0) {
		return Template{}, fmt.Errorf("%w: frequency must be positive, got %v", timealigntypes.ErrInvalidParameter, frequency)
	}
	if sampleRate == 0 {
		return Template{}, fmt.Errorf("%w: sample rate must be positive", timealigntypes.ErrInvalidParameter)
	}
	return Template{
		Samples:    samples,
		Frequency:  frequency,
		SampleRate: sampleRate,
	}, nil
}

// New generates the square wave described by the params.
//
// The amount of samples is round(cycles * sampleRate / frequency). A sample
// is +1 while the phase (in cycles) is within the duty cycle and -1 otherwise.
func New(params Params) (Template, error) {
	if err := params.validate(); err != nil {
		return Template{}, err
	}

	fs := float64(params.SampleRate)
	length := int(math.Round(params.Cycles * fs / params.Frequency))
	if length <= 0 {
		return Template{}, fmt.Errorf("%w: %v cycles of %vHz at %vHz yield no samples", timealigntypes.ErrInvalidParameter, params.Cycles, params.Frequency, fs)
	}

	phaseOffset := params.Phase / (2 * math.Pi)
	samples := make([]float64, length)
	for i := range samples {
		position := float64(i)*params.Frequency/fs + phaseOffset
		position -= math.Floor(position)
		if position < params.DutyCycle {
			samples[i] = 1
		} else {
			samples[i] = -1
		}
	}

	return Template{
		Samples:    samples,
		Frequency:  params.Frequency,
		SampleRate: params.SampleRate,
	}, nil
}

// Default generates one cycle of the default sync waveform.
func Default(sampleRate types.SampleRate) (Template, error) {
	return New(DefaultParams(sampleRate))
}

func (p Params) validate() error {
	if !(p.Frequency > 0) || math.IsInf(p.Frequency, 0) {
		return fmt.Errorf("%w: frequency must be positive, got %v", timealigntypes.ErrInvalidParameter, p.Frequency)
	}
	if p.SampleRate == 0 {
		return fmt.Errorf("%w: sample rate must be positive", timealigntypes.ErrInvalidParameter)
	}
	if !(p.DutyCycle > 0 && p.DutyCycle < 1) {
		return fmt.Errorf("%w: duty cycle must be within (0, 1), got %v", timealigntypes.ErrInvalidParameter, p.DutyCycle)
	}
	if !(p.Cycles > 0) {
		return fmt.Errorf("%w: the amount of cycles must be positive, got %v", timealigntypes.ErrInvalidParameter, p.Cycles)
	}
	if math.IsNaN(p.Phase) || math.IsInf(p.Phase, 0) {
		return fmt.Errorf("%w: phase must be finite, got %v", timealigntypes.ErrInvalidParameter, p.Phase)
	}
	return nil
}
