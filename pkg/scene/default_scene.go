package scene

import (
	"github.com/lightloom/go-ray-engine/pkg/core"
	"github.com/lightloom/go-ray-engine/pkg/geometry"
	"github.com/lightloom/go-ray-engine/pkg/material"
	"github.com/lightloom/go-ray-engine/pkg/pool"
	"github.com/lightloom/go-ray-engine/pkg/renderer"
)

// LoadDefault builds the default scene: a diffuse sphere over a tinted
// ground plane under a blue skydome, viewed through a 16mm APS-C pinhole
// camera. The camera, ground and shape are each loaded as a separate task
// on the loading pool.
func LoadDefault(pools *pool.Registry) (*Scene, error) {
	s := New(NewSkydome(core.NewVec3(0.5, 0.75, 1.0), core.NewVec3(1, 1, 1)))

	err := s.Load(pools, loadCamera, loadGround, loadShape)
	if err != nil {
		return nil, err
	}

	logger.Debugf("default scene assembled with %d surfaces", s.Space.Len())
	return s, nil
}

func loadCamera(s *Scene) {
	s.Camera = renderer.NewPinholeCamera(renderer.SensorAPSC, 16.0/1000.0)
	logger.Debugf("camera loaded")
}

func loadGround(s *Scene) {
	albedo := material.NewLambertian(core.NewVec3(0.4, 0.4, 0.5))
	s.Space.Add(geometry.NewPlane(core.NewVec3(0, 0.25, 0), core.NewVec3(0, -1, 0), albedo))
	logger.Debugf("ground loaded")
}

func loadShape(s *Scene) {
	albedo := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.8))
	s.Space.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.25, albedo))
	logger.Debugf("shape loaded")
}
