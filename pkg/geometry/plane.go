package geometry

import (
	"math"

	"github.com/lightloom/go-ray-engine/pkg/core"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point    core.Vec3     // A point on the plane
	Normal   core.Vec3     // Normal vector, unit length
	Material core.Material // Material of the plane
}

var _ core.Surface = (*Plane)(nil)

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3, material core.Material) *Plane {
	return &Plane{
		Point:    point,
		Normal:   normal.Normalize(),
		Material: material,
	}
}

// Traverse tests if a ray intersects the plane within [tMin, tMax]
func (p *Plane) Traverse(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	denominator := ray.Direction.Dot(p.Normal)

	// A near-zero denominator means the ray runs parallel to the plane
	if math.Abs(denominator) < 1e-8 {
		return nil, false
	}

	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if t < tMin || t > tMax {
		return nil, false
	}

	hitRecord := &core.HitRecord{
		T:        t,
		Point:    ray.At(t),
		Material: p.Material,
	}
	hitRecord.SetFaceNormal(ray, p.Normal)

	return hitRecord, true
}
