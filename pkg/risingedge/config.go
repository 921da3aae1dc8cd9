package risingedge

import (
	"fmt"
	"math"
	"time"

	"github.com/xaionaro-go/audiosync/pkg/audio/types"
	"github.com/xaionaro-go/audiosync/pkg/synctemplate"
	timealigntypes "github.com/xaionaro-go/audiosync/pkg/timealign/types"
)

const DefaultThreshold = 0.6

// Config configures the detection. The zero value is valid:
// see the fields for the defaults.
type Config struct {
	// Template is the sync waveform to search for.
	// The default is one cycle of synctemplate.Default.
	Template synctemplate.Template

	// MinPeakSpacing is the minimal distance between two detected
	// sync cycles. The default is one template period minus one sample.
	MinPeakSpacing time.Duration

	// Threshold is the minimal peak height relative to the range
	// of the normalized correlation, within (0, 1). The default is 0.6.
	Threshold float64
}

// Resolve returns the config with the defaults applied.
func (cfg Config) Resolve(sampleRate types.SampleRate) (Config, error) {
	if sampleRate == 0 {
		return cfg, fmt.Errorf("%w: sample rate must be positive", timealigntypes.ErrInvalidParameter)
	}
	if cfg.Template.IsZero() {
		tmpl, err := synctemplate.Default(sampleRate)
		if err != nil {
			return cfg, fmt.Errorf("unable to generate the default template: %w", err)
		}
		cfg.Template = tmpl
	}
	if cfg.Template.SampleRate != sampleRate {
		return cfg, fmt.Errorf("%w: the template is sampled at %dHz, while the recording is at %dHz", timealigntypes.ErrInvalidParameter, cfg.Template.SampleRate, sampleRate)
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if !(cfg.Threshold > 0 && cfg.Threshold < 1) {
		return cfg, fmt.Errorf("%w: threshold must be within (0, 1), got %v", timealigntypes.ErrInvalidParameter, cfg.Threshold)
	}
	if cfg.MinPeakSpacing < 0 {
		return cfg, fmt.Errorf("%w: negative minimal peak spacing: %v", timealigntypes.ErrInvalidParameter, cfg.MinPeakSpacing)
	}
	return cfg, nil
}

// minDistance returns the minimal peak spacing in samples.
func (cfg Config) minDistance(sampleRate types.SampleRate) int {
	if cfg.MinPeakSpacing == 0 {
		return int(cfg.Template.Period() - 1)
	}
	return int(math.Round(cfg.MinPeakSpacing.Seconds() * float64(sampleRate)))
}
