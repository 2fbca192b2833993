package renderer

import (
	"image"
	"sync"
	"sync/atomic"

	"github.com/lightloom/go-ray-engine/pkg/core"
)

// SensorType selects the film format the camera images onto
type SensorType int

const (
	SensorAPSC SensorType = iota
	SensorFullFrame
	SensorMicroFourThirds
)

// Width returns the sensor width in meters
func (s SensorType) Width() float64 {
	switch s {
	case SensorFullFrame:
		return 0.036
	case SensorMicroFourThirds:
		return 0.0173
	default:
		return 0.0236
	}
}

// sensorFrame is the world-space sensor geometry for one viewport: the
// bottom-left corner of the sensor plane, the per-pixel steps along it,
// and the focal point all rays converge through.
type sensorFrame struct {
	bottomLeft core.Vec3
	hStep      core.Vec3
	vStep      core.Vec3
	focal      core.Vec3
}

// PinholeCamera projects the viewport onto a physical sensor placed at the
// camera position, with the focal point one focal length ahead. Primary
// rays are deterministic per pixel: origin on the sensor plane, direction
// through the focal point.
//
// The pose can be changed from other goroutines while rendering; the
// engine polls TransformChanged each frame to find out whether accumulated
// samples are stale.
type PinholeCamera struct {
	mu          sync.Mutex
	position    core.Vec3
	target      core.Vec3
	up          core.Vec3
	sensorWidth float64
	focalLength float64

	moved atomic.Bool

	rays []core.Ray // cached buffer for single-threaded generation
}

var (
	_ core.Camera               = (*PinholeCamera)(nil)
	_ core.ParallelRayGenerator = (*PinholeCamera)(nil)
)

// NewPinholeCamera creates a camera at the origin looking down -Z
func NewPinholeCamera(sensor SensorType, focalLength float64) *PinholeCamera {
	return &PinholeCamera{
		position:    core.NewVec3(0, 0, 0),
		target:      core.NewVec3(0, 0, -1),
		up:          core.NewVec3(0, 1, 0),
		sensorWidth: sensor.Width(),
		focalLength: focalLength,
	}
}

// MoveTo places the camera at p, keeping its current target
func (c *PinholeCamera) MoveTo(p core.Vec3) {
	c.mu.Lock()
	c.position = p
	c.mu.Unlock()
	c.moved.Store(true)
}

// LookAt aims the camera at t
func (c *PinholeCamera) LookAt(t core.Vec3) {
	c.mu.Lock()
	c.target = t
	c.mu.Unlock()
	c.moved.Store(true)
}

// SetPose moves and aims the camera in one step
func (c *PinholeCamera) SetPose(position, target core.Vec3) {
	c.mu.Lock()
	c.position = position
	c.target = target
	c.mu.Unlock()
	c.moved.Store(true)
}

// SetFocalLength changes the lens, which invalidates accumulation just
// like a move does.
func (c *PinholeCamera) SetFocalLength(f float64) {
	c.mu.Lock()
	c.focalLength = f
	c.mu.Unlock()
	c.moved.Store(true)
}

// Pose returns the current position and target
func (c *PinholeCamera) Pose() (position, target core.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position, c.target
}

// TransformChanged reports whether the pose changed since the last call
// and clears the flag.
func (c *PinholeCamera) TransformChanged() bool {
	return c.moved.Swap(false)
}

// frame computes the sensor geometry for the given viewport
func (c *PinholeCamera) frame(width, height int) sensorFrame {
	c.mu.Lock()
	position, target, up := c.position, c.target, c.up
	sensorWidth, focalLength := c.sensorWidth, c.focalLength
	c.mu.Unlock()

	forward := target.Subtract(position).Normalize()
	right := forward.Cross(up).Normalize()
	trueUp := right.Cross(forward)

	halfWidth := 0.5 * sensorWidth
	halfHeight := halfWidth * float64(height) / float64(width)

	horizontal := right.Multiply(halfWidth)
	vertical := trueUp.Multiply(halfHeight)

	return sensorFrame{
		bottomLeft: position.Subtract(horizontal).Subtract(vertical),
		hStep:      horizontal.Multiply(2.0 / float64(width)),
		vStep:      vertical.Multiply(2.0 / float64(height)),
		focal:      position.Add(forward.Multiply(focalLength)),
	}
}

// GeneratePrimaryRays fills and returns the camera's ray buffer for the
// viewport, one ray per pixel in row-major order with row zero at the top.
// The buffer is reused across calls.
func (c *PinholeCamera) GeneratePrimaryRays(width, height int) []core.Ray {
	if n := width * height; len(c.rays) != n {
		c.rays = make([]core.Ray, n)
	}
	frame := c.frame(width, height)
	c.fillTile(c.rays, image.Rect(0, 0, width, height), frame, width, height)
	return c.rays
}

// GenerateRaysForTile fills one tile of a shared ray buffer. Concurrent
// calls on disjoint tiles write disjoint index ranges, so tile tasks need
// no synchronization against each other.
func (c *PinholeCamera) GenerateRaysForTile(rays []core.Ray, bounds image.Rectangle, width, height int) {
	c.fillTile(rays, bounds, c.frame(width, height), width, height)
}

// fillTile writes the rays for bounds into the row-major buffer. The
// sensor is walked bottom to top while the buffer stores the top scanline
// first, so the vertical index is flipped.
func (c *PinholeCamera) fillTile(rays []core.Ray, bounds image.Rectangle, frame sensorFrame, width, height int) {
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		sensorY := height - 1 - y
		row := y * width
		scanline := frame.bottomLeft.
			Add(frame.vStep.Multiply(float64(sensorY))).
			Add(frame.hStep.Multiply(float64(bounds.Min.X)))

		pixel := scanline
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rays[row+x] = core.NewRay(pixel, frame.focal.Subtract(pixel))
			pixel = pixel.Add(frame.hStep)
		}
	}
}
