package integrator

import (
	"github.com/lightloom/go-ray-engine/pkg/core"
)

// Traversal interval for every path segment. The near bound keeps a
// scattered ray from immediately re-hitting the surface it left.
const (
	tMin = 0.0001
	tMax = 10000.0
)

// DefaultMaxDepth is how many scatter events a path may take before it is
// cut off.
const DefaultMaxDepth = 10

// PathTracingIntegrator implements unidirectional path tracing with an
// explicit bounce loop: the path's running attenuation is carried in a
// throughput accumulator instead of the call stack, so path length never
// translates into stack depth.
type PathTracingIntegrator struct {
	maxDepth int
}

var _ core.Integrator = (*PathTracingIntegrator)(nil)

// NewPathTracingIntegrator creates an integrator that follows paths for up
// to maxDepth scatter events. A non-positive maxDepth selects the default.
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &PathTracingIntegrator{maxDepth: maxDepth}
}

// RayColor follows one path starting at ray and returns the gathered
// radiance plus the number of rays traced along the path.
//
// A path ends three ways: escaping to the sky, which contributes the sky
// radiance attenuated by every bounce so far; absorption, which
// contributes nothing; or running out of depth, which contributes the
// accumulated attenuation as-is.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, space core.Surface, sky core.Sky, sampler core.Sampler) (core.Vec3, int) {
	throughput := core.NewVec3(1, 1, 1)
	emitted := 0

	for depth := 0; ; depth++ {
		emitted++

		hit, isHit := space.Traverse(ray, tMin, tMax)
		if !isHit {
			radiance := sky.Sample(ray.Direction.Normalize())
			return throughput.MultiplyVec(radiance), emitted
		}

		scattered, attenuation, didScatter := hit.Material.Scatter(ray, hit, sampler)
		if !didScatter {
			return core.Vec3{}, emitted
		}

		throughput = throughput.MultiplyVec(attenuation)
		if depth >= pt.maxDepth {
			return throughput, emitted
		}
		ray = scattered
	}
}
