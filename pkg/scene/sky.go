package scene

import "github.com/lightloom/go-ray-engine/pkg/core"

// Skydome is a vertical gradient environment: horizon color at the
// bottom of the dome blending into the zenith color at the top.
type Skydome struct {
	Zenith  core.Vec3
	Horizon core.Vec3
}

var _ core.Sky = (*Skydome)(nil)

// NewSkydome creates a gradient sky
func NewSkydome(zenith, horizon core.Vec3) *Skydome {
	return &Skydome{Zenith: zenith, Horizon: horizon}
}

// Sample blends between horizon and zenith by the direction's elevation.
// The direction must be unit length.
func (s *Skydome) Sample(direction core.Vec3) core.Vec3 {
	t := 0.5 * (direction.Y + 1.0)
	return s.Horizon.Multiply(1.0 - t).Add(s.Zenith.Multiply(t))
}
