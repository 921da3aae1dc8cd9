package main

import (
	"context"
	"fmt"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/audiosync/pkg/audio/wavfile"
	"github.com/xaionaro-go/audiosync/pkg/channelrouter"
	"github.com/xaionaro-go/audiosync/pkg/syncer"
	"github.com/xaionaro-go/audiosync/pkg/syncer/implementations/gccphat"
	"github.com/xaionaro-go/audiosync/pkg/syncer/implementations/xcorr"
)

func main() {
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	channelA := pflag.Int("channel-a", 7, "channel of the first file to compare")
	channelB := pflag.Int("channel-b", 7, "channel of the second file to compare")
	window := pflag.Int("window", xcorr.DefaultWindow, "amount of leading samples to use")
	method := pflag.String("method", "xcorr", "delay estimation method: xcorr, gccphat")
	pflag.Parse()

	if pflag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <a.wav> <b.wav>\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(2)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	recA, err := wavfile.Read(pflag.Arg(0))
	assertNoError(ctx, err)
	recB, err := wavfile.Read(pflag.Arg(1))
	assertNoError(ctx, err)
	if recA.SampleRate() != recB.SampleRate() {
		logger.Panicf(ctx, "the sample rates differ: %d != %d", recA.SampleRate(), recB.SampleRate())
	}

	a, err := channelrouter.SelectChannels([]int{*channelA}, recA)
	assertNoError(ctx, err)
	b, err := channelrouter.SelectChannels([]int{*channelB}, recB)
	assertNoError(ctx, err)

	var s syncer.Syncer
	switch *method {
	case "xcorr":
		s = xcorr.NewSyncer(*window)
	case "gccphat":
		s, err = gccphat.NewSyncer(recA.SampleRate())
		assertNoError(ctx, err)
	default:
		logger.Panicf(ctx, "unknown method '%s'", *method)
	}

	trackA := a.Channel(0)[:min(*window, a.Frames())]
	trackB := b.Channel(0)[:min(*window, b.Frames())]
	results, err := s.CalculateShiftBetween(ctx, trackA, trackB)
	assertNoError(ctx, err)

	fmt.Printf("%v\t%.3f\n", results[0].Shift, results[0].Confidence)
}

func assertNoError(ctx context.Context, err error) {
	if err != nil {
		logger.Panic(ctx, err)
	}
}
