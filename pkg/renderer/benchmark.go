package renderer

import (
	"sync/atomic"
	"time"
)

// benchmarkWindow is how much traced wall time accumulates before the
// current throughput is reported and the lap starts over.
const benchmarkWindow = 5 * time.Second

// benchmark measures tracing throughput in rays per second. Workers bump
// the emitted counter as they trace; the engine brackets each frame with
// begin and end so only time actually spent tracing counts toward the lap.
type benchmark struct {
	emitted atomic.Uint64 // rays traced in the current lap

	started time.Time
	lap     time.Duration

	lastRate     float64
	totalRays    uint64
	totalRuntime time.Duration
}

// addRays credits n traced rays to the current lap. Safe to call from any
// worker goroutine.
func (b *benchmark) addRays(n int) {
	b.emitted.Add(uint64(n))
}

// begin marks the start of a traced frame
func (b *benchmark) begin() {
	b.started = time.Now()
}

// end closes the frame. Once the lap has gathered enough traced time it
// reports the measured rate and resets for the next lap.
func (b *benchmark) end() {
	b.lap += time.Since(b.started)
	if b.lap <= benchmarkWindow {
		return
	}

	rays := b.emitted.Swap(0)
	b.lastRate = float64(rays) / b.lap.Seconds()
	b.totalRays += rays
	b.totalRuntime += b.lap
	b.lap = 0

	logger.Noticef("tracing rate: %.3e rays/s", b.lastRate)
}

// flush folds any partially accumulated lap into the lifetime totals so
// run records include the tail of the session.
func (b *benchmark) flush() {
	b.totalRays += b.emitted.Swap(0)
	b.totalRuntime += b.lap
	b.lap = 0
}

// Rate returns the most recently measured throughput in rays per second,
// or zero before the first full lap.
func (b *benchmark) Rate() float64 {
	return b.lastRate
}
