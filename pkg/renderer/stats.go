package renderer

import (
	"time"

	"github.com/lightloom/go-ray-engine/pkg/pool"
)

// RenderStats summarizes the state of an accumulation session
type RenderStats struct {
	Width          int           // Viewport width in pixels
	Height         int           // Viewport height in pixels
	Passes         uint64        // Accumulation passes completed
	TotalSamples   uint64        // Samples currently accumulated across all pixels
	AverageSamples float64       // Mean samples per pixel in the current accumulation
	RaysPerSecond  float64       // Most recently measured tracing throughput
	TotalRays      uint64        // Rays traced since the engine was created
	TracingTime    time.Duration // Wall time spent inside tracing passes
	Workers        int           // Size of the rendering pool
}

// Stats reports the engine's current counters. Safe to call while a pass
// is in flight; in that case the sample totals reflect whichever tiles
// have merged so far.
func (e *Engine) Stats() RenderStats {
	width, height := e.Viewport()

	stats := RenderStats{
		Width:         width,
		Height:        height,
		Passes:        e.passes,
		TotalSamples:  e.acc.TotalSamples(),
		RaysPerSecond: e.bench.Rate(),
		TotalRays:     e.bench.totalRays + e.bench.emitted.Load(),
		TracingTime:   e.bench.totalRuntime + e.bench.lap,
		Workers:       e.pools.Pool(pool.PurposeRendering).Workers(),
	}
	if pixels := width * height; pixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(pixels)
	}
	return stats
}
