package renderer

import "github.com/lightloom/go-ray-engine/pkg/core"

// TileScratch is a per-task accumulation buffer sized for the largest tile.
// A tile task owns one exclusively while it runs, so samples accumulate
// without any locking; the whole buffer is merged once at the end.
type TileScratch struct {
	Colors []core.Vec3
	Counts []uint32
}

// NewTileScratch allocates scratch for tiles up to maxArea pixels
func NewTileScratch(maxArea int) *TileScratch {
	return &TileScratch{
		Colors: make([]core.Vec3, maxArea),
		Counts: make([]uint32, maxArea),
	}
}

// Reset zeroes the first n entries, preparing the scratch for a tile of n
// pixels
func (s *TileScratch) Reset(n int) {
	for i := 0; i < n; i++ {
		s.Colors[i] = core.Vec3{}
		s.Counts[i] = 0
	}
}

// Add accumulates one sample at a tile-local index
func (s *TileScratch) Add(index int, sample core.Vec3) {
	s.Colors[index] = s.Colors[index].Add(sample)
	s.Counts[index]++
}

// scratchPool hands out reusable tile scratch buffers to rendering tasks.
// It replaces implicit thread-local storage with an explicit free list: the
// scheduler checks a buffer out for each tile task and returns it when the
// merge is done, so steady-state rendering allocates nothing per tile.
type scratchPool struct {
	free    chan *TileScratch
	maxArea int
}

// newScratchPool creates a pool of count pre-allocated scratch buffers for
// tiles up to maxArea pixels
func newScratchPool(count, maxArea int) *scratchPool {
	p := &scratchPool{
		free:    make(chan *TileScratch, count),
		maxArea: maxArea,
	}
	for i := 0; i < count; i++ {
		p.free <- NewTileScratch(maxArea)
	}
	return p
}

// acquire checks out a scratch buffer, growing the pool only if every
// buffer is in use
func (p *scratchPool) acquire() *TileScratch {
	select {
	case s := <-p.free:
		return s
	default:
		return NewTileScratch(p.maxArea)
	}
}

// release returns a scratch buffer to the free list, dropping it if the
// list is already full
func (p *scratchPool) release(s *TileScratch) {
	select {
	case p.free <- s:
	default:
	}
}
