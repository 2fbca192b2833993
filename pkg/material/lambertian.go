package material

import (
	"github.com/lightloom/go-ray-engine/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3 // Base reflectance
}

var _ core.Material = (*Lambertian)(nil)

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter bounces the ray into a cosine-weighted direction around the
// surface normal, attenuated by the albedo.
func (l *Lambertian) Scatter(rayIn core.Ray, hit *core.HitRecord, sampler core.Sampler) (core.Ray, core.Vec3, bool) {
	direction := core.SampleCosineHemisphere(hit.Normal, sampler.Get2D())
	return core.NewRay(hit.Point, direction), l.Albedo, true
}
