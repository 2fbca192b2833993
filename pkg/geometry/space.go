package geometry

import (
	"sync"

	"github.com/lightloom/go-ray-engine/pkg/core"
)

// Space is a linear spatial structure: traversal tests every surface and
// keeps the nearest hit. Surfaces can be added concurrently while a scene
// is assembled; Prepare then freezes the working set into the slice that
// traversal reads without locking.
type Space struct {
	mu       sync.Mutex
	surfaces []core.Surface // grows under mu during assembly
	frozen   []core.Surface // immutable set read by Traverse
}

var (
	_ core.Surface    = (*Space)(nil)
	_ core.Preparable = (*Space)(nil)
)

// NewSpace creates an empty space
func NewSpace() *Space {
	return &Space{}
}

// Add registers surfaces for traversal. Safe to call from concurrent
// loading tasks; the surfaces become visible to traversal at the next
// Prepare.
func (s *Space) Add(surfaces ...core.Surface) {
	s.mu.Lock()
	s.surfaces = append(s.surfaces, surfaces...)
	s.mu.Unlock()
}

// Prepare freezes the current surface set for traversal. Called by the
// engine before each sampling pass; it only copies when surfaces were
// added since the last call.
func (s *Space) Prepare() {
	s.mu.Lock()
	if len(s.frozen) != len(s.surfaces) {
		s.frozen = append([]core.Surface(nil), s.surfaces...)
	}
	s.mu.Unlock()
}

// Len returns the number of registered surfaces
func (s *Space) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.surfaces)
}

// Traverse finds the nearest intersection across all frozen surfaces
func (s *Space) Traverse(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	var nearest *core.HitRecord
	closest := tMax

	for _, surface := range s.frozen {
		if hit, ok := surface.Traverse(ray, tMin, closest); ok {
			nearest = hit
			closest = hit.T
		}
	}

	return nearest, nearest != nil
}
