package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/audiosync/pkg/audio/multichannel"
	"github.com/xaionaro-go/audiosync/pkg/audio/pcm"
	"github.com/xaionaro-go/audiosync/pkg/audio/types"
	"github.com/xaionaro-go/audiosync/pkg/audio/wavfile"
	"github.com/xaionaro-go/audiosync/pkg/config"
	"github.com/xaionaro-go/audiosync/pkg/timealign"
	"github.com/xaionaro-go/datacounter"
)

func main() {
	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	rawFormat := types.PCMFormatS16LE
	pflag.Var(&rawFormat, "raw-format", "PCM format of the raw input (if the input is '-')")
	rawChannels := pflag.Int("raw-channels", 16, "amount of interleaved channels of the raw input (if the input is '-')")
	rawSampleRate := pflag.Uint32("raw-sample-rate", 192000, "sample rate of the raw input (if the input is '-')")
	bitDepth := pflag.Int("bit-depth", 16, "bit depth of the output WAV file")
	pflag.Parse()

	if pflag.NArg() != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <config.yaml> <input.wav|-> <output.wav>\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(2)
	}
	configPath, inputPath, outputPath := pflag.Arg(0), pflag.Arg(1), pflag.Arg(2)

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	cfg, err := config.Load(configPath)
	assertNoError(ctx, err)

	var input *multichannel.Buffer
	if inputPath == "-" {
		input, err = readRaw(ctx, os.Stdin, rawFormat, *rawChannels, types.SampleRate(*rawSampleRate))
	} else {
		input, err = wavfile.Read(inputPath)
	}
	assertNoError(ctx, err)
	logger.Infof(ctx, "loaded %d channels x %d frames @ %dHz", input.Channels(), input.Frames(), input.SampleRate())

	taCfg, err := cfg.TimeAlign(input.SampleRate())
	assertNoError(ctx, err)

	result, err := timealign.TimeAlignChannels(ctx, input, cfg.Layout(), taCfg)
	assertNoError(ctx, err)

	for _, deviceID := range result.CutPoints.DeviceIDs() {
		logger.Infof(ctx, "device '%s': the first rising edge is at sample %d", deviceID, result.CutPoints[deviceID])
		if w := result.Warnings[deviceID]; w != nil {
			logger.Warnf(ctx, "device '%s': %s", deviceID, w)
		}
		if check, ok := result.DelayChecks[deviceID]; ok {
			logger.Infof(ctx, "device '%s': cross-correlation delay %d, cut point delay %d", deviceID, check.Estimated, check.FromCutPoints)
		}
	}

	assertNoError(ctx, wavfile.Write(outputPath, result.Buffer, *bitDepth))
	logger.Infof(ctx, "written %d channels x %d frames to '%s'", result.Buffer.Channels(), result.Buffer.Frames(), outputPath)
}

func readRaw(
	ctx context.Context,
	r io.Reader,
	format types.PCMFormat,
	channels int,
	sampleRate types.SampleRate,
) (*multichannel.Buffer, error) {
	rc := datacounter.NewReaderCounter(r)
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("unable to read the raw input: %w", err)
	}
	logger.Debugf(ctx, "read: %d bytes", rc.Count())

	samples, err := pcm.Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode the raw input: %w", err)
	}
	return multichannel.FromInterleaved(sampleRate, channels, samples)
}

func assertNoError(ctx context.Context, err error) {
	if err != nil {
		logger.Panic(ctx, err)
	}
}
