package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
	Path         scene.Path             `json:"path"` // Every bounce of the un-jittered ray
}

func vecToArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo extracts detailed material information with type assertions
func (s *Server) extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vecToArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)

	case *material.Metal:
		properties["albedo"] = vecToArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzzness"] = m.Fuzzness

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
	}

	return material.Kind(mat), properties
}

// findSphere returns the sphere whose nearest hit along ray is at distance t
func findSphere(world geometry.Surface, ray core.Ray, t float64) *geometry.Sphere {
	var found *geometry.Sphere
	geometry.Walk(world, func(sphere *geometry.Sphere) {
		if found != nil {
			return
		}
		if hit, ok := sphere.Hit(ray, scene.ShadowEpsilon, math.Inf(1)); ok && hit.T == t {
			found = sphere
		}
	})
	return found
}

// handleInspect traces the ray through one pixel and reports what it hit
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	inspectReq := &RenderRequest{}
	setup, err := s.parseCommonSceneParams(r, inspectReq)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	// Parse pixel coordinates, y counted from the top of the image
	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= setup.Image.Width || pixelY < 0 || pixelY >= setup.Image.Height {
		writeJSONError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	camera, err := setup.NewCamera()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	config := renderer.DefaultConfig()
	config.NumWorkers = 1
	config.Seed = inspectReq.Seed
	rt, err := renderer.New(setup.Scene, camera, setup.Image, config)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer rt.Close()

	path := rt.TracePath(pixelX, pixelY)
	first := path.Bounces[0]

	response := InspectResponse{Path: path}
	if first.Outcome != scene.OutcomeMissed && first.Outcome != scene.OutcomeMaxDepth {
		hit := first.Hit
		materialType, materialProps := s.extractMaterialInfo(setup.Scene.Materials[hit.Material])

		geometryProps := make(map[string]interface{})
		response.GeometryType = "unknown"
		if sphere := findSphere(setup.Scene.World, first.Ray, hit.T); sphere != nil {
			response.GeometryType = "sphere"
			geometryProps["center"] = vecToArray(sphere.Center)
			geometryProps["radius"] = sphere.Radius
		}

		response.Hit = true
		response.MaterialType = materialType
		response.Point = vecToArray(hit.Point)
		response.Normal = vecToArray(hit.Normal)
		response.Distance = hit.T
		response.FrontFace = hit.FrontFace
		response.Properties = map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
