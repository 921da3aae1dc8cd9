package timealign

import (
	"github.com/xaionaro-go/audiosync/pkg/risingedge"
)

// Config configures TimeAlignChannels. The zero value is valid.
type Config struct {
	// Detection configures the rising edge detection on the sync channels.
	Detection risingedge.Config

	// KeepSync retains the sync channels in the output (for diagnostics).
	// By default they are stripped.
	KeepSync bool

	// Concurrency is the maximal amount of sync channels analyzed in
	// parallel. The default is runtime.GOMAXPROCS(0).
	Concurrency int

	// CrossCheckWindow enables the delay cross-check (see DelayCheck) using
	// the given amount of leading samples of each sync channel. Zero disables it.
	CrossCheckWindow int
}
