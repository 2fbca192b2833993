package server

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/image/draw"

	"github.com/lightloom/go-ray-engine/pkg/history"
	"github.com/lightloom/go-ray-engine/pkg/integrator"
	"github.com/lightloom/go-ray-engine/pkg/log"
	"github.com/lightloom/go-ray-engine/pkg/pool"
	"github.com/lightloom/go-ray-engine/pkg/renderer"
	"github.com/lightloom/go-ray-engine/pkg/scene"
)

var logger = log.New("web")

// Server exposes the accumulation engine over HTTP: a progressive render
// stream, one-shot previews, and run history. Every render request gets
// its own engine; the worker pools and the run store are shared.
type Server struct {
	port    int
	pools   *pool.Registry
	store   *history.Store // optional
	console *ConsoleBuffer // optional
	mux     *http.ServeMux
}

// NewServer creates a web server over the given pool registry. The store
// and console may be nil, which disables their endpoints.
func NewServer(port int, pools *pool.Registry, store *history.Store, console *ConsoleBuffer) *Server {
	s := &Server{
		port:    port,
		pools:   pools,
		store:   store,
		console: console,
		mux:     http.NewServeMux(),
	}

	s.mux.Handle("/", http.FileServer(http.Dir("web/static/")))
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/preview", s.handlePreview)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/history", s.handleHistory)
	s.mux.HandleFunc("/api/console", s.handleConsole)
	s.mux.HandleFunc("/api/health", s.handleHealth)

	return s
}

// Handler returns the route table, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves requests until the listener fails
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	logger.Noticef("serving on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// RenderRequest carries the parameters of one progressive render
type RenderRequest struct {
	Scene      string  `json:"scene"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Iterations int     `json:"iterations"` // samples per pixel per pass
	Passes     int     `json:"passes"`
	Rate       float64 `json:"rate"` // snapshot refresh rate
	Parallel   bool    `json:"parallel"`
}

// ProgressUpdate is one progressive frame sent over SSE
type ProgressUpdate struct {
	Pass        int    `json:"pass"`
	TotalPasses int    `json:"totalPasses"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	IsComplete  bool   `json:"isComplete"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// Stats mirrors the engine's counters for the client
type Stats struct {
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Passes         uint64  `json:"passes"`
	TotalSamples   uint64  `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	RaysPerSecond  float64 `json:"raysPerSecond"`
	TotalRays      uint64  `json:"totalRays"`
	TracingMs      int64   `json:"tracingMs"`
	Workers        int     `json:"workers"`
}

func statsFrom(rs renderer.RenderStats) Stats {
	return Stats{
		Width:          rs.Width,
		Height:         rs.Height,
		Passes:         rs.Passes,
		TotalSamples:   rs.TotalSamples,
		AverageSamples: rs.AverageSamples,
		RaysPerSecond:  rs.RaysPerSecond,
		TotalRays:      rs.TotalRays,
		TracingMs:      rs.TracingTime.Milliseconds(),
		Workers:        rs.Workers,
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	sonnet.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleScenes lists the scene names a render can request
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(scene.Loaders))
	for name := range scene.Loaders {
		names = append(names, name)
	}
	w.Header().Set("Content-Type", "application/json")
	sonnet.NewEncoder(w).Encode(map[string]any{"scenes": names})
}

// handleHistory returns recent recorded runs
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "run history not enabled", http.StatusNotFound)
		return
	}
	limit, err := parseIntParam(r.URL.Query(), "limit", 20, 1, 1000)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := s.store.ExportJSON(w, limit); err != nil {
		logger.Errorf("history export failed: %v", err)
	}
}

// handleConsole returns the most recent log lines
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	if s.console == nil {
		http.Error(w, "console capture not enabled", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	sonnet.NewEncoder(w).Encode(s.console.Messages())
}

// handleRender runs a progressive render and streams each pass over SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("invalid request: %v", err))
		return
	}

	sc, err := s.loadScene(req.Scene)
	if err != nil {
		s.sendSSEError(w, err.Error())
		return
	}

	eng := renderer.NewEngine(sc.Camera, sc.Sky, integrator.NewPathTracingIntegrator(0), s.pools)
	defer eng.Close()
	eng.SetParallel(req.Parallel)

	// Continuous updates pair with parallel sampling: the publisher's
	// refresh is driven by tile pass completions.
	if req.Parallel {
		req.Rate = eng.StartContinuousUpdates(req.Rate)
	}

	ctx := r.Context()
	startTime := time.Now()

	for pass := 1; pass <= req.Passes; pass++ {
		select {
		case <-ctx.Done():
			logger.Debugf("client disconnected after %d passes", pass-1)
			return
		default:
		}

		if err := eng.Trace(sc.Space, req.Width, req.Height, req.Iterations); err != nil {
			s.sendSSEError(w, fmt.Sprintf("render error: %v", err))
			return
		}

		imageData, err := imageToBase64PNG(eng.SnapshotImage())
		if err != nil {
			s.sendSSEError(w, fmt.Sprintf("failed to encode image: %v", err))
			return
		}

		update := ProgressUpdate{
			Pass:        pass,
			TotalPasses: req.Passes,
			ImageData:   imageData,
			Stats:       statsFrom(eng.Stats()),
			IsComplete:  pass == req.Passes,
			ElapsedMs:   time.Since(startTime).Milliseconds(),
		}
		if err := s.sendSSEUpdate(w, update); err != nil {
			return
		}
	}

	if s.store != nil {
		if _, err := s.store.Record(req.Scene, req.Iterations, eng.Stats()); err != nil {
			logger.Warningf("failed to record run: %v", err)
		}
	}

	s.sendSSEEvent(w, "complete", "rendering completed")
}

// handlePreview renders a one-shot frame and returns it as PNG, scaled to
// the requested output factor.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	sceneName := query.Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}
	width, err := parseIntParam(query, "width", 512, 16, 2000)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	height, err := parseIntParam(query, "height", 300, 16, 2000)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	passes, err := parseIntParam(query, "passes", 8, 1, 256)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	scale, err := parseFloatParam(query, "scale", 1.0, 0.25, 4.0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sc, err := s.loadScene(sceneName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	eng := renderer.NewEngine(sc.Camera, sc.Sky, integrator.NewPathTracingIntegrator(0), s.pools)
	defer eng.Close()

	for pass := 0; pass < passes; pass++ {
		if err := eng.Trace(sc.Space, width, height, 1); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	img := eng.SnapshotImage()
	if scale != 1.0 {
		img = scaleImage(img, scale)
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		logger.Errorf("preview encode failed: %v", err)
	}
}

// scaleImage resamples img by the given factor. Heavy downscales trade
// filter quality for speed.
func scaleImage(img *image.RGBA, factor float64) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0,
		int(float64(bounds.Dx())*factor),
		int(float64(bounds.Dy())*factor)))

	var scaler draw.Scaler = draw.CatmullRom
	if factor < 0.5 {
		scaler = draw.ApproxBiLinear
	}
	scaler.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// loadScene assembles the named scene on the loading pool
func (s *Server) loadScene(name string) (*scene.Scene, error) {
	loader, ok := scene.Loaders[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	return loader(s.pools)
}

// parseRenderRequest parses and validates render parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{}

	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 1024, 100, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 600, 100, 2000); err != nil {
		return nil, err
	}
	if req.Iterations, err = parseIntParam(query, "iterations", 1, 1, 64); err != nil {
		return nil, err
	}
	if req.Passes, err = parseIntParam(query, "passes", 100, 1, 10000); err != nil {
		return nil, err
	}
	if req.Rate, err = parseFloatParam(query, "rate", renderer.DefaultUpdateRate, 1, 240); err != nil {
		return nil, err
	}
	if req.Parallel, err = parseBoolParam(query, "parallel", true); err != nil {
		return nil, err
	}

	if req.Width*req.Height > 800*600 && req.Iterations > 8 {
		logger.Warningf("large viewport with high iteration count may render slowly")
	}

	return req, nil
}

// parseIntParam parses an integer query parameter with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
	}
	return parsed, nil
}

// parseFloatParam parses a float query parameter with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
	}
	return parsed, nil
}

// parseBoolParam parses a boolean query parameter
func parseBoolParam(values url.Values, key string, defaultValue bool) (bool, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %s", key, value)
	}
	return parsed, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// sendSSEUpdate sends a progress update via SSE
func (s *Server) sendSSEUpdate(w http.ResponseWriter, update ProgressUpdate) error {
	data, err := sonnet.Marshal(update)
	if err != nil {
		return err
	}
	return s.sendSSEEvent(w, "progress", string(data))
}

// sendSSEError sends an error via SSE
func (s *Server) sendSSEError(w http.ResponseWriter, message string) error {
	logger.Errorf("%s", message)
	return s.sendSSEEvent(w, "error", message)
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming not supported")
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
	return nil
}
