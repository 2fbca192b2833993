package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lightloom/go-ray-engine/pkg/core"
)

// flatSky returns the same radiance for every escaping ray and records the
// last direction it was sampled with.
type flatSky struct {
	color core.Vec3
	last  core.Vec3
}

func (s *flatSky) Sample(direction core.Vec3) core.Vec3 {
	s.last = direction
	return s.color
}

// emptySpace never intersects anything
type emptySpace struct{}

func (emptySpace) Traverse(core.Ray, float64, float64) (*core.HitRecord, bool) {
	return nil, false
}

// countingSpace hits a fixed material for the first hits traversals, then
// reports a miss.
type countingSpace struct {
	material   core.Material
	hits       int
	traversals int
}

func (s *countingSpace) Traverse(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	s.traversals++
	if s.traversals > s.hits {
		return nil, false
	}
	hit := &core.HitRecord{
		T:        1.0,
		Point:    ray.At(1.0),
		Material: s.material,
	}
	hit.SetFaceNormal(ray, ray.Direction.Normalize().Negate())
	return hit, true
}

// absorber swallows every ray
type absorber struct{}

func (absorber) Scatter(core.Ray, *core.HitRecord, core.Sampler) (core.Ray, core.Vec3, bool) {
	return core.Ray{}, core.Vec3{}, false
}

// bouncer always scatters straight back with a fixed attenuation
type bouncer struct{ attenuation core.Vec3 }

func (b bouncer) Scatter(rayIn core.Ray, hit *core.HitRecord, _ core.Sampler) (core.Ray, core.Vec3, bool) {
	return core.NewRay(hit.Point, rayIn.Direction.Negate()), b.attenuation, true
}

func testSampler() core.Sampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(42)))
}

func TestRayColor_MissReturnsSkyRadiance(t *testing.T) {
	sky := &flatSky{color: core.NewVec3(0.5, 0.75, 1.0)}
	pt := NewPathTracingIntegrator(10)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -2))
	color, emitted := pt.RayColor(ray, emptySpace{}, sky, testSampler())

	if color != sky.color {
		t.Errorf("Expected sky color %v, got %v", sky.color, color)
	}
	if emitted != 1 {
		t.Errorf("Expected exactly 1 ray for a direct miss, got %d", emitted)
	}
}

func TestRayColor_SkySampledWithUnitDirection(t *testing.T) {
	sky := &flatSky{color: core.NewVec3(1, 1, 1)}
	pt := NewPathTracingIntegrator(10)

	// Direction deliberately not normalized
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -7))
	pt.RayColor(ray, emptySpace{}, sky, testSampler())

	if length := sky.last.Length(); math.Abs(length-1.0) > 1e-9 {
		t.Errorf("Expected the sky to be sampled with a unit direction, got length %g", length)
	}
}

func TestRayColor_AbsorptionReturnsBlack(t *testing.T) {
	space := &countingSpace{material: absorber{}, hits: 1}
	sky := &flatSky{color: core.NewVec3(1, 1, 1)}
	pt := NewPathTracingIntegrator(10)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	color, emitted := pt.RayColor(ray, space, sky, testSampler())

	if color != (core.Vec3{}) {
		t.Errorf("Expected black for an absorbed path, got %v", color)
	}
	if emitted != 1 {
		t.Errorf("Expected 1 ray before absorption, got %d", emitted)
	}
}

func TestRayColor_ThroughputAttenuatesAcrossBounces(t *testing.T) {
	// Two bounces at 0.5 attenuation, then escape to a white sky
	space := &countingSpace{material: bouncer{core.NewVec3(0.5, 0.5, 0.5)}, hits: 2}
	sky := &flatSky{color: core.NewVec3(1, 1, 1)}
	pt := NewPathTracingIntegrator(10)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	color, emitted := pt.RayColor(ray, space, sky, testSampler())

	expected := core.NewVec3(0.25, 0.25, 0.25)
	if color != expected {
		t.Errorf("Expected throughput %v after two bounces, got %v", expected, color)
	}
	if emitted != 3 {
		t.Errorf("Expected 3 rays for two bounces plus the escape, got %d", emitted)
	}
}

func TestRayColor_DepthLimitReturnsAccumulatedThroughput(t *testing.T) {
	// A path that would bounce forever gets cut off at the depth limit,
	// keeping the attenuation gathered so far instead of going black.
	space := &countingSpace{material: bouncer{core.NewVec3(0.5, 0.5, 0.5)}, hits: math.MaxInt}
	sky := &flatSky{color: core.NewVec3(1, 1, 1)}

	const maxDepth = 2
	pt := NewPathTracingIntegrator(maxDepth)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	color, emitted := pt.RayColor(ray, space, sky, testSampler())

	// Depth 0 through maxDepth all scatter before the cutoff
	expected := math.Pow(0.5, maxDepth+1)
	if math.Abs(color.X-expected) > 1e-12 {
		t.Errorf("Expected cut-off throughput %g, got %g", expected, color.X)
	}
	if emitted != maxDepth+1 {
		t.Errorf("Expected %d rays at the depth limit, got %d", maxDepth+1, emitted)
	}
}

func TestRayColor_DefaultDepthEmitsElevenRays(t *testing.T) {
	space := &countingSpace{material: bouncer{core.NewVec3(0.9, 0.9, 0.9)}, hits: math.MaxInt}
	sky := &flatSky{color: core.NewVec3(1, 1, 1)}
	pt := NewPathTracingIntegrator(0)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	_, emitted := pt.RayColor(ray, space, sky, testSampler())

	if emitted != DefaultMaxDepth+1 {
		t.Errorf("Expected %d rays at the default depth limit, got %d", DefaultMaxDepth+1, emitted)
	}
}

func TestNewPathTracingIntegrator_NonPositiveDepthUsesDefault(t *testing.T) {
	for _, depth := range []int{0, -1} {
		pt := NewPathTracingIntegrator(depth)
		if pt.maxDepth != DefaultMaxDepth {
			t.Errorf("Expected depth %d to select the default %d, got %d",
				depth, DefaultMaxDepth, pt.maxDepth)
		}
	}
}
