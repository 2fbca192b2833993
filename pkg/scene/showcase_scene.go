package scene

import (
	"github.com/lightloom/go-ray-engine/pkg/core"
	"github.com/lightloom/go-ray-engine/pkg/geometry"
	"github.com/lightloom/go-ray-engine/pkg/material"
	"github.com/lightloom/go-ray-engine/pkg/pool"
)

// LoadShowcase builds a scene with one sphere per material kind: a matte
// center sphere flanked by a polished and a brushed metal sphere.
func LoadShowcase(pools *pool.Registry) (*Scene, error) {
	s := New(NewSkydome(core.NewVec3(0.5, 0.75, 1.0), core.NewVec3(1, 1, 1)))

	err := s.Load(pools,
		loadCamera,
		loadGround,
		func(s *Scene) {
			matte := material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))
			s.Space.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.25, matte))
		},
		func(s *Scene) {
			mirror := material.NewMetallic(core.NewVec3(0.8, 0.8, 0.8), 0)
			s.Space.Add(geometry.NewSphere(core.NewVec3(-0.55, 0, -1), 0.25, mirror))
		},
		func(s *Scene) {
			brushed := material.NewMetallic(core.NewVec3(0.8, 0.6, 0.2), 0.4)
			s.Space.Add(geometry.NewSphere(core.NewVec3(0.55, 0, -1), 0.25, brushed))
		},
	)
	if err != nil {
		return nil, err
	}

	logger.Debugf("showcase scene assembled with %d surfaces", s.Space.Len())
	return s, nil
}

// Named scene loaders for callers that select scenes by name
var Loaders = map[string]func(*pool.Registry) (*Scene, error){
	"default":  LoadDefault,
	"showcase": LoadShowcase,
}
