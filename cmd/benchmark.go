package cmd

import (
	"time"

	"github.com/urfave/cli"
)

// Benchmark traces one scene repeatedly for a fixed wall-clock duration and
// reports the sustained tracing rate.
func Benchmark(ctx *cli.Context) error {
	setupLogging(ctx)

	registry := newRegistry(ctx)
	defer registry.Shutdown()

	sc, eng, err := setupEngine(ctx, registry)
	if err != nil {
		return err
	}
	defer eng.Close()

	store, err := openHistory(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	width := ctx.Int("width")
	height := ctx.Int("height")
	iterations := ctx.Int("iterations")
	duration := time.Duration(ctx.Int("duration")) * time.Second

	interrupted, stopWatch := watchInterrupt(registry)
	defer stopWatch()

	// Keep the display snapshot refreshing while tracing, as a live
	// viewer would.
	rate := eng.StartContinuousUpdates(0)

	logger.Noticef("benchmarking %q at %dx%d for %s (snapshots at %.0f/s)",
		ctx.String("scene"), width, height, duration, rate)

	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) && !interrupted() {
		if err := eng.Trace(sc.Space, width, height, iterations); err != nil {
			return err
		}
	}

	stats := eng.Stats()
	displayRenderStats(stats)

	if store != nil {
		if _, err := store.Record(ctx.String("scene"), iterations, stats); err != nil {
			logger.Warningf("failed to record run: %v", err)
		}
	}

	return nil
}
