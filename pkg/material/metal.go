package material

import (
	"github.com/lightloom/go-ray-engine/pkg/core"
)

// Metallic represents a reflective material. Diffusion perturbs the
// mirror direction: 0 is a perfect mirror, 1 is very rough.
type Metallic struct {
	Albedo    core.Vec3
	Diffusion float64
}

var _ core.Material = (*Metallic)(nil)

// NewMetallic creates a new metallic material with diffusion clamped to
// [0, 1].
func NewMetallic(albedo core.Vec3, diffusion float64) *Metallic {
	return &Metallic{
		Albedo:    albedo,
		Diffusion: core.Clamp(diffusion, 0, 1),
	}
}

// Scatter reflects the ray about the surface normal, roughened by the
// diffusion factor. A reflection perturbed below the surface is absorbed.
func (m *Metallic) Scatter(rayIn core.Ray, hit *core.HitRecord, sampler core.Sampler) (core.Ray, core.Vec3, bool) {
	reflected := rayIn.Direction.Normalize().Reflect(hit.Normal)
	if m.Diffusion > 0 {
		perturbation := core.SampleInUnitSphere(sampler).Multiply(m.Diffusion)
		reflected = reflected.Add(perturbation)
	}

	if reflected.Dot(hit.Normal) <= 0 {
		return core.Ray{}, core.Vec3{}, false
	}

	return core.NewRay(hit.Point, reflected), m.Albedo, true
}
