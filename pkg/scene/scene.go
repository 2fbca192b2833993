package scene

import (
	"github.com/lightloom/go-ray-engine/pkg/core"
	"github.com/lightloom/go-ray-engine/pkg/geometry"
	"github.com/lightloom/go-ray-engine/pkg/log"
	"github.com/lightloom/go-ray-engine/pkg/pool"
	"github.com/lightloom/go-ray-engine/pkg/renderer"
)

var logger = log.New("scene")

// Scene bundles the collaborators the engine consumes: the camera that
// shapes primary rays, the spatial structure holding the geometry, and
// the sky sampled by escaping rays.
type Scene struct {
	Camera *renderer.PinholeCamera
	Space  *geometry.Space
	Sky    core.Sky
}

// New creates an empty scene with the given sky
func New(sky core.Sky) *Scene {
	return &Scene{
		Space: geometry.NewSpace(),
		Sky:   sky,
	}
}

// Load assembles the scene by running each loader as its own task on the
// registry's loading pool and waiting for all of them. Loaders may touch
// disjoint parts of the scene concurrently; the wait makes their writes
// visible before Load returns.
func (s *Scene) Load(pools *pool.Registry, loaders ...func(*Scene)) error {
	loading := pools.Pool(pool.PurposeLoading)

	results := make([]*pool.Result, 0, len(loaders))
	for _, loader := range loaders {
		loader := loader
		res, err := loading.Submit(pool.PriorityNormal, func() (any, error) {
			loader(s)
			return nil, nil
		})
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	for _, res := range results {
		if _, err := res.Wait(); err != nil {
			return err
		}
	}
	return nil
}
