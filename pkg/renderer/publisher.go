package renderer

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lightloom/go-ray-engine/pkg/core"
)

const (
	// DefaultUpdateRate is the snapshot refresh rate when none is given
	DefaultUpdateRate = 30.0
	// maxUpdateRate bounds how fast the publisher can be asked to refresh
	maxUpdateRate = 240.0
)

// clampUpdateRate maps an invalid requested rate onto a usable one rather
// than rejecting it. The caller learns the effective value from the return.
func clampUpdateRate(rate float64) float64 {
	if math.IsNaN(rate) || rate <= 0 {
		return DefaultUpdateRate
	}
	return core.Clamp(rate, 0, maxUpdateRate)
}

// Publisher maintains the display snapshot in continuous mode: a background
// loop that waits until every tile of the current pass has merged, then
// normalizes the accumulation buffers into the snapshot at a target rate.
//
// The loop deliberately reads the buffers without taking the merge lock.
// Consistency comes from the pass barrier alone: tiles decrement the active
// count as they finish merging, and only the tile that drives it to zero
// marks the pass complete and wakes the loop. The publisher therefore never
// observes a half merged pass.
type Publisher struct {
	acc *Accumulator

	tilesCompleted atomic.Bool  // no partial pass in flight
	activeTiles    atomic.Int32 // tiles still working in the current pass

	mu       sync.Mutex // guards cond, active, stopping, interval
	cond     sync.Cond
	active   bool
	stopping bool
	interval time.Duration

	snapMu sync.Mutex    // serializes snapshot writes against display reads
	stopCh chan struct{} // interrupts the pacing sleep
	done   chan struct{} // closed when the loop has exited

	// onSnapshot runs after every normalization pass. Tests use it to
	// observe exactly when the publisher reads the shared buffers.
	onSnapshot func()
}

// NewPublisher creates an inactive publisher over the accumulator. The
// barrier starts in the completed state with no tiles active, ready for the
// first snapshot.
func NewPublisher(acc *Accumulator) *Publisher {
	p := &Publisher{acc: acc}
	p.cond.L = &p.mu
	p.tilesCompleted.Store(true)
	return p
}

// Active reports whether continuous updates are running
func (p *Publisher) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Start begins continuous updates at the requested rate in snapshots per
// second and returns the effective (clamped) rate. Calling Start while
// already active is a no-op that returns the current rate.
func (p *Publisher) Start(rate float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		return 1.0 / p.interval.Seconds()
	}

	effective := clampUpdateRate(rate)
	p.interval = time.Duration(float64(time.Second) / effective)
	p.active = true
	p.stopping = false
	p.tilesCompleted.Store(true)
	p.activeTiles.Store(0)
	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})

	go p.loop(p.stopCh, p.done)

	logger.Debugf("continuous updates started at %.1f/s", effective)
	return effective
}

// Stop deactivates continuous mode: it forces the completion flag so a
// blocked loop iteration wakes, observes the stop request, and exits, then
// joins the background goroutine. Safe to call repeatedly and from
// teardown paths.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	p.stopping = true
	p.tilesCompleted.Store(true)
	close(p.stopCh)
	p.cond.Broadcast()
	done := p.done
	p.mu.Unlock()

	<-done
	logger.Debugf("continuous updates stopped")
}

// SetRate adjusts the refresh rate of a running publisher and returns the
// effective value after clamping.
func (p *Publisher) SetRate(rate float64) float64 {
	effective := clampUpdateRate(rate)
	p.mu.Lock()
	p.interval = time.Duration(float64(time.Second) / effective)
	p.mu.Unlock()
	return effective
}

// loop is the background publisher: wait for a completed pass, normalize,
// then sleep off the remainder of the target period.
func (p *Publisher) loop(stopCh, done chan struct{}) {
	defer close(done)

	for {
		p.mu.Lock()
		for !p.tilesCompleted.Load() && !p.stopping {
			p.cond.Wait()
		}
		if p.stopping {
			p.mu.Unlock()
			return
		}
		interval := p.interval
		p.mu.Unlock()

		started := time.Now()

		// A mid-resize wake-up finds the buffers in transient
		// disagreement; skip this cycle and retry on the next signal.
		if p.acc.consistent() {
			p.snapMu.Lock()
			p.acc.normalizeInto(p.acc.snapshot)
			p.snapMu.Unlock()
			if p.onSnapshot != nil {
				p.onSnapshot()
			}
			p.tilesCompleted.Store(false)
		}

		if sleep := interval - time.Since(started); sleep > 0 {
			select {
			case <-time.After(sleep):
			case <-stopCh:
			}
		}
	}
}

// BeginPass arms the barrier for a pass of the given tile count. With at
// least one tile outstanding the publisher stays blocked until the last
// tile reports in.
func (p *Publisher) BeginPass(tiles int) {
	p.activeTiles.Store(int32(tiles))
	if tiles > 0 {
		p.tilesCompleted.Store(false)
	}
}

// TileFinished records that one tile has merged its results. The call that
// brings the outstanding count to zero completes the pass and wakes the
// publisher.
func (p *Publisher) TileFinished() {
	remaining := p.activeTiles.Add(-1)
	if remaining < 0 {
		panic("renderer: tile completion count went negative")
	}
	if remaining == 0 {
		p.tilesCompleted.Store(true)
		p.mu.Lock()
		p.cond.Signal()
		p.mu.Unlock()
	}
}

// SnapshotForDisplay returns the latest displayable image. In continuous
// mode it copies the snapshot the background loop maintains, without
// recomputing; otherwise it normalizes on demand. Either way the caller is
// never blocked for longer than one pass over the pixels.
func (p *Publisher) SnapshotForDisplay() []core.Vec3 {
	if !p.Active() {
		return p.acc.Snapshot()
	}

	p.snapMu.Lock()
	defer p.snapMu.Unlock()
	out := make([]core.Vec3, len(p.acc.snapshot))
	copy(out, p.acc.snapshot)
	return out
}
