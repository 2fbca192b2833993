package cmd

import (
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/urfave/cli"

	"github.com/lightloom/go-ray-engine/pkg/history"
	"github.com/lightloom/go-ray-engine/pkg/integrator"
	"github.com/lightloom/go-ray-engine/pkg/pool"
	"github.com/lightloom/go-ray-engine/pkg/renderer"
	"github.com/lightloom/go-ray-engine/pkg/scene"
)

// newRegistry builds the pool registry for a command. Only the rendering
// pool size is user-tunable; the loading and input pools keep their
// single-worker defaults.
func newRegistry(ctx *cli.Context) *pool.Registry {
	return pool.NewRegistry(pool.Config{
		Rendering: ctx.Int("workers"),
	})
}

// openHistory opens the run store named by the history-db flag, or returns
// nil when the flag is empty.
func openHistory(ctx *cli.Context) (*history.Store, error) {
	path := ctx.String("history-db")
	if path == "" {
		return nil, nil
	}
	return history.Open(path)
}

// setupEngine assembles a scene and an engine from command flags
func setupEngine(ctx *cli.Context, registry *pool.Registry) (*scene.Scene, *renderer.Engine, error) {
	sceneName := ctx.String("scene")
	loader, ok := scene.Loaders[sceneName]
	if !ok {
		return nil, nil, cli.NewExitError("unknown scene: "+sceneName, 1)
	}

	sc, err := loader(registry)
	if err != nil {
		return nil, nil, err
	}

	eng := renderer.NewEngine(sc.Camera, sc.Sky, integrator.NewPathTracingIntegrator(ctx.Int("max-depth")), registry)
	eng.SetParallel(!ctx.Bool("serial"))
	return sc, eng, nil
}

// watchInterrupt parks a signal wait on the input pool so a render loop can
// poll for Ctrl-C between passes. The returned stop func must be called
// before the registry shuts down, otherwise the input worker never exits.
func watchInterrupt(registry *pool.Registry) (check func() bool, stop func()) {
	var interrupted atomic.Bool

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	registry.Submit(pool.PurposeInput, pool.PriorityHigh, func() (any, error) {
		if _, ok := <-sigCh; ok {
			interrupted.Store(true)
			logger.Notice("interrupt received, finishing current pass")
		}
		return nil, nil
	})

	check = func() bool { return interrupted.Load() }
	stop = func() {
		signal.Stop(sigCh)
		close(sigCh)
	}
	return check, stop
}
