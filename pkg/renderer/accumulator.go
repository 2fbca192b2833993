package renderer

import (
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/lightloom/go-ray-engine/pkg/core"
)

// Accumulator owns the shared frame buffers: accumulated radiance sums,
// per-pixel sample counts, and the normalized snapshot derived from them.
// Tile merges are serialized by a single mutex so one tile's pixels always
// commit atomically with respect to other tiles.
type Accumulator struct {
	mu sync.Mutex // guards merges; snapshot reads rely on the pass barrier

	width, height int
	framebuffer   []core.Vec3 // radiance sums
	rayCounters   []uint32    // samples received per pixel
	snapshot      []core.Vec3 // normalized image, rebuilt on demand

	// mergeDelay stretches the locked section of MergeTile. Tests use it
	// to widen the window in which a publisher could observe a half
	// merged pass.
	mergeDelay time.Duration
}

// NewAccumulator creates an accumulator with empty buffers. Resize must be
// called before any tracing.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Width returns the current viewport width
func (a *Accumulator) Width() int { return a.width }

// Height returns the current viewport height
func (a *Accumulator) Height() int { return a.height }

// Resize adapts all buffers to the viewport. Changing dimensions discards
// every accumulated sample; same-size calls keep accumulation intact.
func (a *Accumulator) Resize(width, height int) {
	if width == a.width && height == a.height && a.framebuffer != nil {
		return
	}
	a.width = width
	a.height = height
	n := width * height
	a.framebuffer = make([]core.Vec3, n)
	a.rayCounters = make([]uint32, n)
	a.snapshot = make([]core.Vec3, n)
}

// Clear zeroes the radiance sums and sample counts in place, restarting
// accumulation for the current dimensions.
func (a *Accumulator) Clear() {
	for i := range a.framebuffer {
		a.framebuffer[i] = core.Vec3{}
	}
	for i := range a.rayCounters {
		a.rayCounters[i] = 0
	}
}

// MergeTile commits one tile's scratch sums and counts into the shared
// buffers under the merge lock. The scratch buffer is indexed relative to
// the tile bounds.
func (a *Accumulator) MergeTile(bounds image.Rectangle, scratch *TileScratch) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mergeDelay > 0 {
		time.Sleep(a.mergeDelay)
	}

	tileWidth := bounds.Dx()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		rowLocal := (y - bounds.Min.Y) * tileWidth
		rowGlobal := y * a.width
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			local := rowLocal + (x - bounds.Min.X)
			global := rowGlobal + x
			a.framebuffer[global] = a.framebuffer[global].Add(scratch.Colors[local])
			a.rayCounters[global] += scratch.Counts[local]
		}
	}
}

// addSample accumulates one sample directly, bypassing tile scratch. Only
// the single-threaded path uses it, so no locking is needed.
func (a *Accumulator) addSample(index int, sample core.Vec3) {
	a.framebuffer[index] = a.framebuffer[index].Add(sample)
	a.rayCounters[index]++
}

// Snapshot recomputes the normalized image: accumulated color divided by
// sample count wherever a pixel has samples, black elsewhere. Calling it
// repeatedly without new samples yields identical results. The returned
// slice is the internal buffer and must be treated as read-only.
func (a *Accumulator) Snapshot() []core.Vec3 {
	a.normalizeInto(a.snapshot)
	return a.snapshot
}

// normalizeInto writes the normalized image into dst, which must have one
// entry per pixel.
func (a *Accumulator) normalizeInto(dst []core.Vec3) {
	for i, count := range a.rayCounters {
		if count > 0 {
			dst[i] = a.framebuffer[i].Multiply(1.0 / float64(count))
		} else {
			dst[i] = core.Vec3{}
		}
	}
}

// consistent reports whether all buffers are non-empty and sized for the
// same pixel count. During a resize the buffers can transiently disagree;
// the publisher skips those wake-ups.
func (a *Accumulator) consistent() bool {
	n := len(a.framebuffer)
	return n > 0 && len(a.rayCounters) == n && len(a.snapshot) == n
}

// Image recomputes the snapshot and converts it into an RGBA image with
// gamma correction applied.
func (a *Accumulator) Image() *image.RGBA {
	return PixelsToImage(a.Snapshot(), a.width, a.height)
}

// PixelsToImage converts a normalized row-major pixel buffer into an RGBA
// image with gamma correction applied.
func PixelsToImage(pixels []core.Vec3, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, vec3ToColor(pixels[y*width+x]))
		}
	}
	return img
}

// vec3ToColor converts a linear color vector to a display color with
// gamma 2.0 correction
func vec3ToColor(v core.Vec3) color.RGBA {
	corrected := v.Clamp(0, 1).GammaCorrect(2.0)
	return color.RGBA{
		R: uint8(corrected.X * 255),
		G: uint8(corrected.Y * 255),
		B: uint8(corrected.Z * 255),
		A: 255,
	}
}

// TotalSamples returns the sum of all per-pixel sample counts. It takes
// the merge lock so it can run while tiles are still merging.
func (a *Accumulator) TotalSamples() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	var total uint64
	for _, c := range a.rayCounters {
		total += uint64(c)
	}
	return total
}
