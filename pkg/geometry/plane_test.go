package geometry

import (
	"math"
	"testing"

	"github.com/lightloom/go-ray-engine/pkg/core"
)

func TestPlane_Traverse_BasicIntersection(t *testing.T) {
	// A horizontal plane at y=0
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), testMaterial())

	// Ray shooting down from above
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	hit, isHit := plane.Traverse(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if math.Abs(hit.T-1.0) > 1e-9 {
		t.Errorf("Expected t=1, got t=%f", hit.T)
	}
	if math.Abs(hit.Point.Y) > 1e-9 {
		t.Errorf("Expected hit point on the plane, got y=%f", hit.Point.Y)
	}
	if !hit.FrontFace {
		t.Error("Expected a front face hit from above")
	}
	if hit.Normal != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected normal (0, 1, 0), got %v", hit.Normal)
	}
}

func TestPlane_Traverse_ParallelRayMisses(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), testMaterial())
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0))

	if _, isHit := plane.Traverse(ray, 0.001, 1000.0); isHit {
		t.Error("Expected a parallel ray to miss")
	}
}

func TestPlane_Traverse_BehindOriginMisses(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), testMaterial())

	// Ray above the plane moving further up
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0))

	if _, isHit := plane.Traverse(ray, 0.001, 1000.0); isHit {
		t.Error("Expected a miss for an intersection behind the ray origin")
	}
}

func TestPlane_Traverse_NormalFacesAgainstRay(t *testing.T) {
	// An overhead plane with its normal pointing down, hit from below
	plane := NewPlane(core.NewVec3(0, 0.25, 0), core.NewVec3(0, -1, 0), testMaterial())
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := plane.Traverse(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if math.Abs(hit.T-0.25) > 1e-9 {
		t.Errorf("Expected t=0.25, got t=%f", hit.T)
	}
	if !hit.FrontFace {
		t.Error("Expected a front face hit against the downward normal")
	}
	if hit.Normal != core.NewVec3(0, -1, 0) {
		t.Errorf("Expected the normal to face the ray, got %v", hit.Normal)
	}
}

func TestPlane_Traverse_RangeBounds(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), testMaterial())
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	if _, isHit := plane.Traverse(ray, 0.001, 0.5); isHit {
		t.Error("Expected miss when the intersection lies beyond tMax")
	}
	if _, isHit := plane.Traverse(ray, 1.5, 1000.0); isHit {
		t.Error("Expected miss when the intersection lies before tMin")
	}
}

func TestNewPlane_NormalizesNormal(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 5, 0), testMaterial())
	if math.Abs(plane.Normal.Length()-1.0) > 1e-12 {
		t.Errorf("Expected unit normal, got length %f", plane.Normal.Length())
	}
}
