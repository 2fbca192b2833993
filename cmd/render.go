package cmd

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/lightloom/go-ray-engine/pkg/renderer"
)

// RenderFrame runs a fixed number of accumulation passes and writes the
// final image to disk.
func RenderFrame(ctx *cli.Context) error {
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
	passes := ctx.Int("passes")

	interrupted, stopWatch := watchInterrupt(registry)
	defer stopWatch()

	logger.Noticef("rendering %q at %dx%d, %d passes of %d iterations",
		ctx.String("scene"), width, height, passes, iterations)

	completed := 0
	for pass := 1; pass <= passes; pass++ {
		if interrupted() {
			break
		}
		if err := eng.Trace(sc.Space, width, height, iterations); err != nil {
			return err
		}
		completed = pass
		logger.Debugf("pass %d/%d complete", pass, passes)
	}

	stats := eng.Stats()
	displayRenderStats(stats)

	outPath := ctx.String("out")
	if outPath == "" {
		dir := filepath.Join("output", ctx.String("scene"))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		outPath = filepath.Join(dir, fmt.Sprintf("render_%s.png", time.Now().Format("20060102_150405")))
	}

	if err := savePNG(outPath, eng); err != nil {
		return err
	}
	logger.Noticef("wrote %d passes to %s", completed, outPath)

	if store != nil {
		if _, err := store.Record(ctx.String("scene"), iterations, stats); err != nil {
			logger.Warningf("failed to record run: %v", err)
		}
	}

	return nil
}

// savePNG encodes the engine's current snapshot to path
func savePNG(path string, eng *renderer.Engine) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, eng.SnapshotImage())
}

func displayRenderStats(stats renderer.RenderStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Viewport", "Passes", "Samples/px", "Rays", "Rays/s", "Tracing time", "Workers"})
	table.Append([]string{
		fmt.Sprintf("%dx%d", stats.Width, stats.Height),
		fmt.Sprintf("%d", stats.Passes),
		fmt.Sprintf("%.1f", stats.AverageSamples),
		fmt.Sprintf("%d", stats.TotalRays),
		fmt.Sprintf("%.3e", stats.RaysPerSecond),
		stats.TracingTime.Round(time.Millisecond).String(),
		fmt.Sprintf("%d", stats.Workers),
	})

	table.Render()
	logger.Noticef("render statistics\n%s", buf.String())
}
