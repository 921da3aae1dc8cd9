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
	"github.com/xaionaro-go/audiosync/pkg/synctemplate"
	"github.com/xaionaro-go/audiosync/pkg/syncinfo"
	"gopkg.in/yaml.v3"
)

func main() {
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	syncFrequency := pflag.Float64("sync-frequency", synctemplate.DefaultFrequency, "frequency of the sync signal (and of the video frames) in Hz")
	syncChannels := pflag.IntSlice("sync-channels", []int{7}, "channels carrying the sync signal")
	threshold := pflag.Float64("threshold", syncinfo.DefaultThreshold, "relative sync pulse detection threshold")
	minDistance := pflag.Int("min-distance", syncinfo.DefaultMinDistance, "minimal distance between sync pulses in samples")
	pflag.Parse()

	if pflag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file.wav>...\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(2)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	cfg := syncinfo.Config{
		Threshold:   *threshold,
		MinDistance: *minDistance,
	}

	report := map[string]syncinfo.Info{}
	for _, path := range pflag.Args() {
		buf, err := wavfile.Read(path)
		if err != nil {
			logger.Errorf(ctx, "unable to read '%s': %v", path, err)
			continue
		}
		info, err := syncinfo.Describe(buf, *syncFrequency, *syncChannels, cfg)
		if err != nil {
			logger.Errorf(ctx, "unable to describe '%s': %v", path, err)
			continue
		}
		report[path] = info
	}

	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	assertNoError(ctx, encoder.Encode(report))
}

func assertNoError(ctx context.Context, err error) {
	if err != nil {
		logger.Panic(ctx, err)
	}
}
