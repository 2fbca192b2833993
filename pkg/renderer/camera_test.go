package renderer

import (
	"image"
	"math"
	"testing"

	"github.com/lightloom/go-ray-engine/pkg/core"
)

func TestPinholeCamera_RaysConvergeThroughFocalPoint(t *testing.T) {
	camera := NewPinholeCamera(SensorAPSC, 16.0/1000.0)
	rays := camera.GeneratePrimaryRays(32, 24)

	// Camera at the origin looking down -Z puts the focal point one focal
	// length along the view axis.
	focal := core.NewVec3(0, 0, -16.0/1000.0)

	for i, ray := range rays {
		at := ray.At(1.0)
		if math.Abs(at.X-focal.X) > 1e-12 ||
			math.Abs(at.Y-focal.Y) > 1e-12 ||
			math.Abs(at.Z-focal.Z) > 1e-12 {
			t.Fatalf("Ray %d does not pass through the focal point: At(1)=%v, focal=%v", i, at, focal)
		}
	}
}

func TestPinholeCamera_SensorAspectFollowsViewport(t *testing.T) {
	camera := NewPinholeCamera(SensorAPSC, 16.0/1000.0)
	frame := camera.frame(1024, 600)

	sensorWidth := frame.hStep.Length() * 1024
	sensorHeight := frame.vStep.Length() * 600

	if math.Abs(sensorWidth-0.0236) > 1e-12 {
		t.Errorf("Expected sensor width 0.0236, got %g", sensorWidth)
	}
	expectedHeight := 0.0236 * 600.0 / 1024.0
	if math.Abs(sensorHeight-expectedHeight) > 1e-12 {
		t.Errorf("Expected sensor height %g, got %g", expectedHeight, sensorHeight)
	}
}

func TestPinholeCamera_TileGenerationMatchesFullGeneration(t *testing.T) {
	const width, height = 70, 50

	camera := NewPinholeCamera(SensorAPSC, 16.0/1000.0)
	serial := append([]core.Ray(nil), camera.GeneratePrimaryRays(width, height)...)

	tiled := make([]core.Ray, width*height)
	for _, tile := range NewTileGrid(width, height, 32) {
		camera.GenerateRaysForTile(tiled, tile.Bounds, width, height)
	}

	for i := range serial {
		if serial[i] != tiled[i] {
			t.Fatalf("Ray %d differs between serial and tiled generation: %v vs %v",
				i, serial[i], tiled[i])
		}
	}
}

func TestPinholeCamera_VerticalOrientation(t *testing.T) {
	camera := NewPinholeCamera(SensorAPSC, 16.0/1000.0)
	rays := camera.GeneratePrimaryRays(8, 8)

	// Through the pinhole, the top image row looks below the view axis and
	// the bottom row looks above it.
	top := rays[0]
	bottom := rays[7*8]

	if top.Direction.Y >= 0 {
		t.Errorf("Expected top row direction to point down, got Y=%g", top.Direction.Y)
	}
	if bottom.Direction.Y <= 0 {
		t.Errorf("Expected bottom row direction to point up, got Y=%g", bottom.Direction.Y)
	}
}

func TestPinholeCamera_TransformChangedLatches(t *testing.T) {
	camera := NewPinholeCamera(SensorAPSC, 16.0/1000.0)

	if camera.TransformChanged() {
		t.Error("Expected no transform change on a fresh camera")
	}

	camera.MoveTo(core.NewVec3(0, 1, 0))
	if !camera.TransformChanged() {
		t.Error("Expected transform change after MoveTo")
	}
	if camera.TransformChanged() {
		t.Error("Expected the change flag to reset after checking")
	}

	camera.LookAt(core.NewVec3(1, 0, -1))
	if !camera.TransformChanged() {
		t.Error("Expected transform change after LookAt")
	}

	camera.SetFocalLength(35.0 / 1000.0)
	if !camera.TransformChanged() {
		t.Error("Expected transform change after SetFocalLength")
	}

	camera.SetPose(core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0))
	if !camera.TransformChanged() {
		t.Error("Expected transform change after SetPose")
	}
}

func TestPinholeCamera_PoseReflectsUpdates(t *testing.T) {
	camera := NewPinholeCamera(SensorAPSC, 16.0/1000.0)
	camera.SetPose(core.NewVec3(1, 2, 3), core.NewVec3(0, 0, -5))

	position, target := camera.Pose()
	if position != core.NewVec3(1, 2, 3) {
		t.Errorf("Expected position (1, 2, 3), got %v", position)
	}
	if target != core.NewVec3(0, 0, -5) {
		t.Errorf("Expected target (0, 0, -5), got %v", target)
	}
}

func TestPinholeCamera_MoveShiftsRayOrigins(t *testing.T) {
	camera := NewPinholeCamera(SensorAPSC, 16.0/1000.0)
	before := append([]core.Ray(nil), camera.GeneratePrimaryRays(4, 4)...)

	camera.SetPose(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 0))
	after := camera.GeneratePrimaryRays(4, 4)

	offset := core.NewVec3(0, 0, 1)
	for i := range before {
		moved := before[i].Origin.Add(offset)
		if math.Abs(moved.X-after[i].Origin.X) > 1e-12 ||
			math.Abs(moved.Y-after[i].Origin.Y) > 1e-12 ||
			math.Abs(moved.Z-after[i].Origin.Z) > 1e-12 {
			t.Fatalf("Ray %d origin did not translate with the camera: %v vs %v",
				i, moved, after[i].Origin)
		}
	}
}

func TestPinholeCamera_SensorWidths(t *testing.T) {
	tests := []struct {
		name     string
		sensor   SensorType
		expected float64
	}{
		{"APS-C", SensorAPSC, 0.0236},
		{"full frame", SensorFullFrame, 0.036},
		{"micro four thirds", SensorMicroFourThirds, 0.0173},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sensor.Width(); got != tt.expected {
				t.Errorf("Expected width %g, got %g", tt.expected, got)
			}
		})
	}
}

func TestPinholeCamera_TileFillWritesOnlyItsRegion(t *testing.T) {
	const width, height = 16, 16

	camera := NewPinholeCamera(SensorAPSC, 16.0/1000.0)
	rays := make([]core.Ray, width*height)
	bounds := image.Rect(4, 4, 8, 8)
	camera.GenerateRaysForTile(rays, bounds, width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			inside := image.Pt(x, y).In(bounds)
			written := rays[y*width+x] != (core.Ray{})
			if inside && !written {
				t.Errorf("Expected ray at (%d, %d) inside the tile to be written", x, y)
			}
			if !inside && written {
				t.Errorf("Expected ray at (%d, %d) outside the tile to stay zero", x, y)
			}
		}
	}
}
