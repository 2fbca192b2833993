package renderer

import (
	"image"
	"math/rand"

	"github.com/lightloom/go-ray-engine/pkg/core"
	"github.com/lightloom/go-ray-engine/pkg/log"
	"github.com/lightloom/go-ray-engine/pkg/pool"
)

var logger = log.New("renderer")

// tileBatchFactor sets the scheduling queue depth: each batch submits up
// to workers*tileBatchFactor tile tasks before waiting at the barrier.
const tileBatchFactor = 4

// Engine accumulates path traced samples across frames. Each Trace call
// runs one pass over the viewport: primary rays are generated through the
// camera, traced by the integrator, and merged into the accumulation
// buffers, so the image refines for as long as the camera holds still.
//
// The engine does not own its collaborators: the camera, sky, integrator
// and pool registry are injected, and the spatial structure arrives with
// every Trace call.
type Engine struct {
	camera     core.Camera
	sky        core.Sky
	integrator core.Integrator
	pools      *pool.Registry

	acc   *Accumulator
	pub   *Publisher
	bench benchmark

	scratches   *scratchPool
	primaryRays []core.Ray
	sampler     core.Sampler // sampling state for the single-threaded path

	parallel bool
	passes   uint64
}

// NewEngine creates an engine over the given collaborators. Tile-parallel
// sampling is enabled by default and runs on the registry's rendering
// pool.
func NewEngine(camera core.Camera, sky core.Sky, integrator core.Integrator, pools *pool.Registry) *Engine {
	acc := NewAccumulator()
	return &Engine{
		camera:     camera,
		sky:        sky,
		integrator: integrator,
		pools:      pools,
		acc:        acc,
		pub:        NewPublisher(acc),
		sampler:    core.NewRandomSampler(rand.New(rand.NewSource(1))),
		parallel:   true,
	}
}

// SetParallel switches tile-parallel sampling on or off. With it off every
// pass runs on the calling goroutine.
func (e *Engine) SetParallel(parallel bool) {
	e.parallel = parallel
}

// Viewport returns the dimensions of the last traced frame
func (e *Engine) Viewport() (width, height int) {
	return e.acc.Width(), e.acc.Height()
}

// Trace runs one accumulation pass: iterations samples for every pixel of
// a width by height viewport. A degenerate viewport or iteration count is
// a no-op. The returned error is non-nil only when tile tasks could not
// run to completion, such as after the rendering pool has been stopped.
func (e *Engine) Trace(space core.Surface, width, height, iterations int) error {
	if width <= 0 || height <= 0 || iterations <= 0 {
		return nil
	}

	e.bench.begin()
	e.prepareBuffers(width, height)
	e.checkCameraChange()
	if err := e.buildPrimaryRays(width, height); err != nil {
		return err
	}
	e.prepareSpace(space)

	var err error
	if e.parallelWorkers() > 1 {
		err = e.sampleTiles(space, width, height, iterations)
	} else {
		e.sampleSerial(space, iterations)
	}
	e.passes++
	e.bench.end()
	return err
}

// parallelWorkers returns the number of workers tile tasks can use, or
// zero when parallel sampling is off.
func (e *Engine) parallelWorkers() int {
	if !e.parallel {
		return 0
	}
	return e.pools.Pool(pool.PurposeRendering).Workers()
}

// prepareBuffers sizes the accumulation buffers and the scratch pool for
// the viewport. Nothing is reallocated while the dimensions hold steady.
func (e *Engine) prepareBuffers(width, height int) {
	e.acc.Resize(width, height)

	tileSize := TileSizeFor(width, height)
	maxArea := tileSize * tileSize
	if e.scratches == nil || e.scratches.maxArea != maxArea {
		e.scratches = newScratchPool(e.pools.Pool(pool.PurposeRendering).Workers(), maxArea)
	}
}

// checkCameraChange restarts accumulation when the camera has moved, since
// every stored sample was taken from the old viewpoint.
func (e *Engine) checkCameraChange() {
	if e.camera.TransformChanged() {
		logger.Debugf("camera moved, restarting accumulation")
		e.acc.Clear()
	}
}

// buildPrimaryRays fills the primary ray buffer for the frame. Cameras
// that can generate tiles independently are driven through the rendering
// pool in batches; everything else falls back to the camera's own
// single-threaded path.
func (e *Engine) buildPrimaryRays(width, height int) error {
	gen, ok := e.camera.(core.ParallelRayGenerator)
	if !ok || e.parallelWorkers() <= 1 {
		e.primaryRays = e.camera.GeneratePrimaryRays(width, height)
		return nil
	}

	if n := width * height; len(e.primaryRays) != n {
		e.primaryRays = make([]core.Ray, n)
	}

	rendering := e.pools.Pool(pool.PurposeRendering)
	tiles := NewTileGrid(width, height, TileSizeFor(width, height))
	batch := rendering.Workers() * tileBatchFactor

	var firstErr error
	results := make([]*pool.Result, 0, batch)
	for start := 0; start < len(tiles); start += batch {
		end := min(start+batch, len(tiles))
		results = results[:0]
		for _, tile := range tiles[start:end] {
			bounds := tile.Bounds
			res, err := rendering.Submit(pool.PriorityNormal, func() (any, error) {
				gen.GenerateRaysForTile(e.primaryRays, bounds, width, height)
				return nil, nil
			})
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			results = append(results, res)
		}
		rendering.WaitAll()
		for _, res := range results {
			if _, err := res.Wait(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// prepareSpace gives the spatial structure a chance to build acceleration
// data before the sampling loops hammer it with traversals.
func (e *Engine) prepareSpace(space core.Surface) {
	if p, ok := space.(core.Preparable); ok {
		p.Prepare()
	}
}

// sampleSerial accumulates one pass on the calling goroutine. With no
// concurrent writers the samples go straight into the buffers, no scratch
// or merge lock involved.
func (e *Engine) sampleSerial(space core.Surface, iterations int) {
	emitted := 0
	for i := range e.primaryRays {
		for n := 0; n < iterations; n++ {
			sample, rays := e.integrator.RayColor(e.primaryRays[i], space, e.sky, e.sampler)
			e.acc.addSample(i, sample)
			emitted += rays
		}
	}
	e.bench.addRays(emitted)
}

// sampleTiles accumulates one pass by fanning tiles out over the rendering
// pool. Tiles are submitted in bounded batches with a barrier between
// them, and the publisher's pass barrier is armed first so a snapshot can
// only be taken once every tile of the pass has merged.
func (e *Engine) sampleTiles(space core.Surface, width, height, iterations int) error {
	rendering := e.pools.Pool(pool.PurposeRendering)
	tiles := NewTileGrid(width, height, TileSizeFor(width, height))
	batch := rendering.Workers() * tileBatchFactor
	pass := e.passes

	e.pub.BeginPass(len(tiles))

	var firstErr error
	results := make([]*pool.Result, 0, batch)
	for start := 0; start < len(tiles); start += batch {
		end := min(start+batch, len(tiles))
		results = results[:0]
		for _, tile := range tiles[start:end] {
			res, err := rendering.Submit(pool.PriorityNormal, e.tileTask(space, tile, width, iterations, pass))
			if err != nil {
				// The task will never run, so retire its barrier
				// slot here to keep the pass completable.
				e.pub.TileFinished()
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			results = append(results, res)
		}
		rendering.WaitAll()
		for _, res := range results {
			if _, err := res.Wait(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// tileTask wraps one tile's sampling work for submission. The barrier slot
// is retired in a defer so even a panicking integrator cannot leave the
// pass incomplete.
func (e *Engine) tileTask(space core.Surface, tile Tile, width, iterations int, pass uint64) func() (any, error) {
	return func() (any, error) {
		defer e.pub.TileFinished()
		e.traceTile(space, tile, width, iterations, pass)
		return nil, nil
	}
}

// traceTile samples every pixel of one tile into checked-out scratch, then
// merges the whole tile into the shared buffers under a single lock
// acquisition.
func (e *Engine) traceTile(space core.Surface, tile Tile, width, iterations int, pass uint64) {
	scratch := e.scratches.acquire()
	defer e.scratches.release(scratch)
	scratch.Reset(tile.Area())

	// Distinct deterministic seed per tile and pass
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(int64(pass)<<20 | int64(tile.ID))))

	tileWidth := tile.Bounds.Dx()
	emitted := 0
	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		rowLocal := (y - tile.Bounds.Min.Y) * tileWidth
		rowGlobal := y * width
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			ray := e.primaryRays[rowGlobal+x]
			local := rowLocal + x - tile.Bounds.Min.X
			for n := 0; n < iterations; n++ {
				sample, rays := e.integrator.RayColor(ray, space, e.sky, sampler)
				scratch.Add(local, sample)
				emitted += rays
			}
		}
	}

	e.bench.addRays(emitted)
	e.acc.MergeTile(tile.Bounds, scratch)
}

// Snapshot recomputes and returns the normalized image. The returned slice
// is reused by the engine and must be treated as read-only.
func (e *Engine) Snapshot() []core.Vec3 {
	return e.acc.Snapshot()
}

// SnapshotForDisplay returns the freshest displayable image without
// blocking behind in-flight sampling. See Publisher.SnapshotForDisplay.
func (e *Engine) SnapshotForDisplay() []core.Vec3 {
	return e.pub.SnapshotForDisplay()
}

// SnapshotImage returns the display snapshot as a gamma corrected RGBA
// image.
func (e *Engine) SnapshotImage() *image.RGBA {
	width, height := e.Viewport()
	return PixelsToImage(e.SnapshotForDisplay(), width, height)
}

// Present hands the freshest displayable image to a display sink. The
// sink runs on the calling goroutine; sampling is never held up beyond
// the snapshot copy.
func (e *Engine) Present(display core.Display) {
	width, height := e.Viewport()
	display.Present(e.SnapshotForDisplay(), width, height)
}

// StartContinuousUpdates begins refreshing the display snapshot in the
// background at the requested rate and returns the effective rate.
func (e *Engine) StartContinuousUpdates(rate float64) float64 {
	return e.pub.Start(rate)
}

// StopContinuousUpdates halts the background refresh and joins its
// goroutine. Safe to call at any point, including mid-pass.
func (e *Engine) StopContinuousUpdates() {
	e.pub.Stop()
}

// ContinuousUpdatesActive reports whether the background refresh is
// running.
func (e *Engine) ContinuousUpdatesActive() bool {
	return e.pub.Active()
}

// SetUpdateRate adjusts the continuous refresh rate and returns the
// effective value.
func (e *Engine) SetUpdateRate(rate float64) float64 {
	return e.pub.SetRate(rate)
}

// Close stops background work. The pool registry is owned by the caller
// and is not shut down here.
func (e *Engine) Close() {
	e.pub.Stop()
	e.bench.flush()
}
