// Package timealign aligns in time the channels recorded by several
// independent ADCs, using a sync signal recorded by each of them.
package timealign

import (
	"context"
	"fmt"
	"runtime"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/audiosync/pkg/alignment"
	"github.com/xaionaro-go/audiosync/pkg/audio/multichannel"
	"github.com/xaionaro-go/audiosync/pkg/channelrouter"
	"github.com/xaionaro-go/audiosync/pkg/risingedge"
	"github.com/xaionaro-go/audiosync/pkg/syncer/implementations/xcorr"
	"github.com/xaionaro-go/audiosync/pkg/timealign/types"
	"golang.org/x/sync/errgroup"
)

// DelayCheck compares the delay between a device and the reference
// device as estimated by the cross-correlation of their sync channels
// against the one implied by the detected cut points.
type DelayCheck struct {
	Estimated     int
	FromCutPoints int
}

// Discrepancy returns the absolute difference between the two delays.
func (c DelayCheck) Discrepancy() int {
	d := c.Estimated - c.FromCutPoints
	if d < 0 {
		return -d
	}
	return d
}

type Result struct {
	// Buffer is the aligned recording.
	Buffer *multichannel.Buffer

	// CutPoints are the detected first rising edges of every device.
	CutPoints types.CutPoints

	// Warnings are the non-fatal detection warnings per device.
	Warnings map[types.DeviceID]*risingedge.IrregularSyncWarning

	// DelayChecks are set only if Config.CrossCheckWindow is positive;
	// the reference device (the first one) is not included.
	DelayChecks map[types.DeviceID]DelayCheck
}

// TimeAlignChannels finds the first rising edge of the sync signal of
// every device and cuts the channels of each device at it.
func TimeAlignChannels(
	ctx context.Context,
	buf *multichannel.Buffer,
	layout types.Layout,
	cfg Config,
) (_ret *Result, _err error) {
	logger.Debugf(ctx, "TimeAlignChannels(ctx, [%d channels x %d frames @ %dHz], %d devices)", buf.Channels(), buf.Frames(), buf.SampleRate(), len(layout.Devices))
	defer func() { logger.Debugf(ctx, "/TimeAlignChannels: %v", _err) }()

	if err := layout.Validate(buf.Channels()); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	if err := channelrouter.CheckForChannelOverlap(layout.Devices); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	detection, err := cfg.Detection.Resolve(buf.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("invalid detection config: %w", err)
	}

	detections, err := detectAll(ctx, buf, layout.Sync, detection, cfg.Concurrency)
	if err != nil {
		return nil, err
	}

	result := &Result{
		CutPoints: make(types.CutPoints, len(detections)),
		Warnings:  map[types.DeviceID]*risingedge.IrregularSyncWarning{},
	}
	for deviceID, detection := range detections {
		result.CutPoints[deviceID] = detection.Index
		if detection.Warning != nil {
			result.Warnings[deviceID] = detection.Warning
		}
	}
	logger.Debugf(ctx, "cut points: %v", result.CutPoints)

	if cfg.CrossCheckWindow > 0 {
		result.DelayChecks, err = crossCheck(ctx, buf, layout.Sync, result.CutPoints, cfg.CrossCheckWindow)
		if err != nil {
			return nil, err
		}
	}

	aligned, err := alignment.AlignChannels(buf, layout.Devices, result.CutPoints)
	if err != nil {
		return nil, fmt.Errorf("unable to align the channels: %w", err)
	}
	if !cfg.KeepSync {
		aligned = aligned.Without(layout.SyncChannelIndices()...)
	}
	result.Buffer = aligned
	return result, nil
}

func detectAll(
	ctx context.Context,
	buf *multichannel.Buffer,
	syncChannels types.SyncChannels,
	cfg risingedge.Config,
	concurrency int,
) (map[types.DeviceID]risingedge.Result, error) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	deviceIDs := syncChannels.DeviceIDs()
	results := make([]risingedge.Result, len(deviceIDs))
	errs := make([]error, len(deviceIDs))

	var eg errgroup.Group
	eg.SetLimit(concurrency)
	for idx, deviceID := range deviceIDs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return nil
			}
			ctx := logger.CtxWithLogger(ctx, logger.FromCtx(ctx).WithField("device", string(deviceID)))
			results[idx], errs[idx] = risingedge.Detect(ctx, buf.Channel(syncChannels[deviceID]), buf.SampleRate(), cfg)
			return nil
		})
	}
	_ = eg.Wait()

	if err := deviceErrors(deviceIDs, errs); err != nil {
		return nil, fmt.Errorf("unable to detect the sync signal: %w", err)
	}

	result := make(map[types.DeviceID]risingedge.Result, len(deviceIDs))
	for idx, deviceID := range deviceIDs {
		result[deviceID] = results[idx]
	}
	return result, nil
}

func crossCheck(
	ctx context.Context,
	buf *multichannel.Buffer,
	syncChannels types.SyncChannels,
	cutPoints types.CutPoints,
	window int,
) (map[types.DeviceID]DelayCheck, error) {
	deviceIDs := syncChannels.DeviceIDs()
	refID := deviceIDs[0]
	ref := buf.Channel(syncChannels[refID])

	others := deviceIDs[1:]
	checks := make([]DelayCheck, len(others))
	errs := make([]error, len(others))

	var eg errgroup.Group
	for idx, deviceID := range others {
		eg.Go(func() error {
			delay, err := xcorr.EstimateDelay(buf.Channel(syncChannels[deviceID]), ref, window)
			if err != nil {
				errs[idx] = err
				return nil
			}
			checks[idx] = DelayCheck{
				Estimated:     delay,
				FromCutPoints: cutPoints[deviceID] - cutPoints[refID],
			}
			if checks[idx].Discrepancy() != 0 {
				logger.Warnf(ctx, "device '%s' vs '%s': the cross-correlation delay is %d, but the cut points differ by %d", deviceID, refID, delay, checks[idx].FromCutPoints)
			}
			return nil
		})
	}
	_ = eg.Wait()

	if err := deviceErrors(others, errs); err != nil {
		return nil, fmt.Errorf("unable to cross-check the delays: %w", err)
	}

	result := make(map[types.DeviceID]DelayCheck, len(others))
	for idx, deviceID := range others {
		result[deviceID] = checks[idx]
	}
	return result, nil
}

// deviceErrors aggregates the non-nil errs[i] of deviceIDs[i].
func deviceErrors(deviceIDs []types.DeviceID, errs []error) error {
	var mErr *multierror.Error
	for idx, err := range errs {
		if err != nil {
			mErr = multierror.Append(mErr, &types.DeviceError{Device: deviceIDs[idx], Err: err})
		}
	}
	return mErr.ErrorOrNil()
}
