package pool

import (
	"fmt"
	"runtime"
	"sync"
)

// Purpose identifies which pool a workload belongs to. Keeping pools
// separate means input polling is never starved by a saturated rendering
// queue and asset loading does not compete with per-frame tile tasks.
type Purpose int

const (
	PurposeGeneral Purpose = iota
	PurposeRendering
	PurposeLoading
	PurposeInput
)

// String returns a human-readable purpose name
func (p Purpose) String() string {
	switch p {
	case PurposeGeneral:
		return "general"
	case PurposeRendering:
		return "rendering"
	case PurposeLoading:
		return "loading"
	case PurposeInput:
		return "input"
	default:
		return fmt.Sprintf("purpose(%d)", int(p))
	}
}

// reservedThreads is the number of hardware threads left free for the
// display, input and loading pools when sizing the rendering pool.
const reservedThreads = 3

// Config holds per-purpose worker counts. A zero count selects the default
// size for that purpose.
type Config struct {
	General   int
	Rendering int
	Loading   int
	Input     int
}

// Registry maps purposes to independently sized worker pools. It is an
// explicit value owned by the composition root and passed to whoever needs
// it; pools are created lazily on first use.
type Registry struct {
	mu    sync.Mutex
	cfg   Config
	pools map[Purpose]*WorkerPool
	shut  bool
}

// NewRegistry creates a registry with the given sizing. Pools are not
// started until first requested.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:   cfg,
		pools: make(map[Purpose]*WorkerPool),
	}
}

// defaultSize returns the worker count for a purpose when the config leaves
// it unset: the rendering pool gets the hardware threads minus a reserve,
// every other purpose gets a single worker.
func defaultSize(purpose Purpose) int {
	if purpose == PurposeRendering {
		return max(1, runtime.NumCPU()-reservedThreads)
	}
	return 1
}

func (r *Registry) sizeFor(purpose Purpose) int {
	var configured int
	switch purpose {
	case PurposeGeneral:
		configured = r.cfg.General
	case PurposeRendering:
		configured = r.cfg.Rendering
	case PurposeLoading:
		configured = r.cfg.Loading
	case PurposeInput:
		configured = r.cfg.Input
	}
	if configured > 0 {
		return configured
	}
	return defaultSize(purpose)
}

// Pool returns the worker pool for a purpose, creating it on first use.
// Using a registry after Shutdown is a programming error and panics.
func (r *Registry) Pool(purpose Purpose) *WorkerPool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shut {
		panic("pool: registry used after shutdown")
	}
	if p, ok := r.pools[purpose]; ok {
		return p
	}
	p := NewWorkerPool(r.sizeFor(purpose))
	r.pools[purpose] = p
	return p
}

// Submit enqueues work on the pool for the given purpose
func (r *Registry) Submit(purpose Purpose, priority Priority, run func() (any, error)) (*Result, error) {
	return r.Pool(purpose).Submit(priority, run)
}

// Initialize replaces the sizing configuration, stopping any pools built
// with the previous one. It also revives a registry after Shutdown.
func (r *Registry) Initialize(cfg Config) {
	r.mu.Lock()
	pools := r.pools
	r.cfg = cfg
	r.pools = make(map[Purpose]*WorkerPool)
	r.shut = false
	r.mu.Unlock()

	for _, p := range pools {
		p.Stop()
	}
}

// Shutdown stops every pool and joins their workers. Idempotent; meant for
// process teardown.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	if r.shut {
		r.mu.Unlock()
		return
	}
	r.shut = true
	pools := r.pools
	r.pools = make(map[Purpose]*WorkerPool)
	r.mu.Unlock()

	for _, p := range pools {
		p.Stop()
	}
}
