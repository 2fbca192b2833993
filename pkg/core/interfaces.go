package core

import "image"

// HitRecord contains information about a ray-surface intersection
type HitRecord struct {
	T         float64  // Ray parameter at the intersection
	Point     Vec3     // Intersection point in world space
	Normal    Vec3     // Surface normal, always facing against the ray
	FrontFace bool     // Whether the ray hit the front side of the surface
	Material  Material // Material at the intersection
}

// SetFaceNormal orients the normal against the incident ray
func (h *HitRecord) SetFaceNormal(ray Ray, outwardNormal Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Surface is a spatial structure that rays can be traced against
type Surface interface {
	// Traverse finds the nearest intersection within [tMin, tMax]
	Traverse(ray Ray, tMin, tMax float64) (*HitRecord, bool)
}

// Material determines how light scatters at an intersection
type Material interface {
	// Scatter returns the scattered ray and attenuation, or false if the
	// ray was absorbed
	Scatter(rayIn Ray, hit *HitRecord, sampler Sampler) (Ray, Vec3, bool)
}

// Sky provides radiance for rays that miss all geometry
type Sky interface {
	// Sample returns the sky color for a unit direction
	Sample(direction Vec3) Vec3
}

// Integrator computes the radiance carried by one primary ray
type Integrator interface {
	// RayColor follows the ray through the surface and returns the
	// gathered color plus the number of rays emitted along the way
	RayColor(ray Ray, space Surface, sky Sky, sampler Sampler) (Vec3, int)
}

// Preparable is an optional Surface capability for structures that build
// acceleration data before traversal. The engine probes for it with a
// type assertion and calls Prepare before sampling begins.
type Preparable interface {
	Prepare()
}

// Camera produces the primary ray for each viewport pixel.
// Rays are deterministic per pixel; sample variance comes from scattering.
type Camera interface {
	// GeneratePrimaryRays fills a row-major buffer with one ray per pixel
	GeneratePrimaryRays(width, height int) []Ray

	// TransformChanged reports whether the camera moved since the last
	// call, which invalidates all accumulated samples. Checking resets
	// the flag.
	TransformChanged() bool
}

// ParallelRayGenerator is an optional camera capability: cameras that
// implement it can fill independent tile regions of the primary ray buffer
// concurrently. Callers probe for it with a type assertion.
type ParallelRayGenerator interface {
	// GenerateRaysForTile fills the rays for one tile of the viewport
	// into the shared row-major buffer. Tiles never overlap, so no
	// synchronization is needed between concurrent calls.
	GenerateRaysForTile(rays []Ray, bounds image.Rectangle, width, height int)
}

// Display consumes normalized snapshots for presentation. Present must not
// block the engine beyond the duration of a buffer copy.
type Display interface {
	Present(pixels []Vec3, width, height int)
}
