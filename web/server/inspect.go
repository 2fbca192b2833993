package server

import (
	"fmt"
	"image"
	"net/http"

	"github.com/sugawarayuuta/sonnet"

	"github.com/lightloom/go-ray-engine/pkg/core"
	"github.com/lightloom/go-ray-engine/pkg/material"
)

// InspectResponse describes what an inspection ray found
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	Point        [3]float64     `json:"point,omitempty"`
	Normal       [3]float64     `json:"normal,omitempty"`
	Distance     float64        `json:"distance,omitempty"`
	FrontFace    bool           `json:"frontFace,omitempty"`
	MaterialType string         `json:"materialType,omitempty"`
	Properties   map[string]any `json:"properties,omitempty"`
	SkyColor     [3]float64     `json:"skyColor,omitempty"`
}

// extractMaterialInfo reports the material behind a hit
func extractMaterialInfo(mat core.Material) (string, map[string]any) {
	properties := make(map[string]any)

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vec3Array(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metallic:
		properties["albedo"] = vec3Array(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["diffusion"] = m.Diffusion
		return "metallic", properties

	default:
		return "unknown", properties
	}
}

func vec3Array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	c := v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// handleInspect casts a single ray through the requested pixel and reports
// what it intersects. The probe uses the same camera mapping as the
// renderer, so pixel coordinates match the rendered image.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	query := r.URL.Query()

	sceneName := query.Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}
	width, err := parseIntParam(query, "width", 1024, 100, 2000)
	if err != nil {
		writeInspectError(w, err.Error())
		return
	}
	height, err := parseIntParam(query, "height", 600, 100, 2000)
	if err != nil {
		writeInspectError(w, err.Error())
		return
	}
	pixelX, err := parseIntParam(query, "x", -1, 0, width-1)
	if err != nil || pixelX < 0 {
		writeInspectError(w, "missing or invalid x coordinate")
		return
	}
	pixelY, err := parseIntParam(query, "y", -1, 0, height-1)
	if err != nil || pixelY < 0 {
		writeInspectError(w, "missing or invalid y coordinate")
		return
	}

	sc, err := s.loadScene(sceneName)
	if err != nil {
		writeInspectError(w, err.Error())
		return
	}
	sc.Space.Prepare()

	rays := make([]core.Ray, 1)
	sc.Camera.GenerateRaysForTile(rays, image.Rect(pixelX, pixelY, pixelX+1, pixelY+1), width, height)
	ray := rays[0]

	hit, ok := sc.Space.Traverse(ray, 0.0001, 10000.0)
	if !ok {
		sky := sc.Sky.Sample(ray.Direction.Normalize())
		sonnet.NewEncoder(w).Encode(InspectResponse{Hit: false, SkyColor: vec3Array(sky)})
		return
	}

	materialType, properties := extractMaterialInfo(hit.Material)
	sonnet.NewEncoder(w).Encode(InspectResponse{
		Hit:          true,
		Point:        vec3Array(hit.Point),
		Normal:       vec3Array(hit.Normal),
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		MaterialType: materialType,
		Properties:   properties,
	})
}

func writeInspectError(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusBadRequest)
	sonnet.NewEncoder(w).Encode(map[string]string{"error": message})
}
