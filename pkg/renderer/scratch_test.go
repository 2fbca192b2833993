package renderer

import (
	"testing"

	"github.com/lightloom/go-ray-engine/pkg/core"
)

func TestTileScratch_AddAccumulates(t *testing.T) {
	scratch := NewTileScratch(4)
	scratch.Reset(4)

	scratch.Add(1, core.NewVec3(0.5, 0, 0))
	scratch.Add(1, core.NewVec3(0.5, 1, 0))

	if scratch.Counts[1] != 2 {
		t.Errorf("Expected 2 samples at index 1, got %d", scratch.Counts[1])
	}
	if scratch.Colors[1] != core.NewVec3(1, 1, 0) {
		t.Errorf("Expected summed color (1, 1, 0), got %v", scratch.Colors[1])
	}
	if scratch.Counts[0] != 0 || scratch.Counts[2] != 0 {
		t.Error("Expected untouched indices to stay at zero samples")
	}
}

func TestTileScratch_ResetZeroesRequestedRange(t *testing.T) {
	scratch := NewTileScratch(8)
	for i := 0; i < 8; i++ {
		scratch.Add(i, core.NewVec3(1, 1, 1))
	}

	scratch.Reset(4)

	for i := 0; i < 4; i++ {
		if scratch.Counts[i] != 0 || scratch.Colors[i] != (core.Vec3{}) {
			t.Errorf("Expected index %d to be reset, got count=%d color=%v",
				i, scratch.Counts[i], scratch.Colors[i])
		}
	}
}

func TestScratchPool_ReusesReleasedBuffers(t *testing.T) {
	p := newScratchPool(1, 16)

	first := p.acquire()
	p.release(first)
	second := p.acquire()

	if first != second {
		t.Error("Expected a released buffer to be handed out again")
	}
}

func TestScratchPool_GrowsWhenExhausted(t *testing.T) {
	p := newScratchPool(1, 16)

	first := p.acquire()
	second := p.acquire()

	if second == nil || len(second.Colors) != 16 {
		t.Fatal("Expected a freshly allocated buffer when the pool is drained")
	}
	if first == second {
		t.Error("Expected distinct buffers for concurrent holders")
	}

	// Returning more buffers than capacity must not block
	p.release(first)
	p.release(second)
}
