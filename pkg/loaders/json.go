package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

var (
	// ErrUnknownMaterialType reports a material "type" other than lambertian, metal or dielectric
	ErrUnknownMaterialType = errors.New("unknown material type")
	// ErrUnknownMaterial reports a sphere that names a material the file does not define
	ErrUnknownMaterial = errors.New("unknown material")
	// ErrDuplicateMaterial reports two materials with the same name
	ErrDuplicateMaterial = errors.New("duplicate material name")
)

// Default image settings for scene files that omit them
const (
	DefaultWidth    = 400
	DefaultSamples  = 100
	DefaultMaxDepth = 50
)

// Vector is written as a JSON array [x, y, z]
type Vector [3]float64

func (v Vector) toCore() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

func fromCore(v core.Vec3) Vector {
	return Vector{v.X, v.Y, v.Z}
}

// SceneFile is the on-disk JSON scene description
type SceneFile struct {
	Name        string `json:"name"`
	Variant     string `json:"variant,omitempty"`
	Description string `json:"description,omitempty"`
	Group       string `json:"group,omitempty"`

	Camera    CameraSpec     `json:"camera"`
	Image     ImageSpec      `json:"image"`
	Materials []MaterialSpec `json:"materials"`
	Spheres   []SphereSpec   `json:"spheres"`
}

// CameraSpec mirrors scene.CameraConfig
type CameraSpec struct {
	LookFrom    Vector  `json:"lookFrom"`
	LookAt      Vector  `json:"lookAt"`
	Up          Vector  `json:"up"`
	VFov        float64 `json:"vfov"`
	AspectRatio float64 `json:"aspectRatio"`
}

// ImageSpec sets the render target. Height 0 derives it from the aspect ratio.
type ImageSpec struct {
	Width    int `json:"width"`
	Height   int `json:"height,omitempty"`
	Samples  int `json:"samples"`
	MaxDepth int `json:"maxDepth"`
}

// MaterialSpec is one named material
type MaterialSpec struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`           // lambertian, metal or dielectric
	Albedo Vector  `json:"albedo"`         // lambertian and metal
	Fuzz   float64 `json:"fuzz,omitempty"` // metal
	IOR    float64 `json:"ior,omitempty"`  // dielectric
}

// SphereSpec places a sphere with a material referenced by name
type SphereSpec struct {
	Center   Vector  `json:"center"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

func defaultSceneFile() SceneFile {
	cam := scene.DefaultCameraConfig()
	return SceneFile{
		Camera: CameraSpec{
			LookFrom:    fromCore(cam.LookFrom),
			LookAt:      fromCore(cam.LookAt),
			Up:          fromCore(cam.Up),
			VFov:        cam.VFov,
			AspectRatio: cam.AspectRatio,
		},
		Image: ImageSpec{
			Width:    DefaultWidth,
			Samples:  DefaultSamples,
			MaxDepth: DefaultMaxDepth,
		},
	}
}

// Resolve builds the built-in preset named arg, or loads arg as a scene file
// when it ends in .json
func Resolve(arg string) (*scene.Setup, error) {
	if strings.HasSuffix(arg, ".json") {
		return LoadScene(arg)
	}
	return scene.LookupPreset(arg)
}

// LoadScene reads a JSON scene file
func LoadScene(path string) (*scene.Setup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	setup, err := ParseScene(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return setup, nil
}

// ParseScene decodes a JSON scene and builds a validated scene from it.
// Fields left out of the file keep their defaults.
func ParseScene(r io.Reader) (*scene.Setup, error) {
	file := defaultSceneFile()

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}

	return file.Build()
}

// Build resolves material names to handles and validates the result
func (f *SceneFile) Build() (*scene.Setup, error) {
	b := scene.NewBuilder()

	handles := make(map[string]material.Handle, len(f.Materials))
	for i, spec := range f.Materials {
		if _, exists := handles[spec.Name]; exists {
			return nil, fmt.Errorf("material %d %q: %w", i, spec.Name, ErrDuplicateMaterial)
		}
		m, err := spec.toMaterial()
		if err != nil {
			return nil, fmt.Errorf("material %d %q: %w", i, spec.Name, err)
		}
		handles[spec.Name] = b.Material(m)
	}

	for i, spec := range f.Spheres {
		handle, ok := handles[spec.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d references %q: %w", i, spec.Material, ErrUnknownMaterial)
		}
		b.Sphere(spec.Center.toCore(), spec.Radius, handle)
	}

	s, err := b.Build()
	if err != nil {
		return nil, err
	}

	camera := scene.CameraConfig{
		LookFrom:    f.Camera.LookFrom.toCore(),
		LookAt:      f.Camera.LookAt.toCore(),
		Up:          f.Camera.Up.toCore(),
		VFov:        f.Camera.VFov,
		AspectRatio: f.Camera.AspectRatio,
	}
	if _, err := scene.NewCamera(camera); err != nil {
		return nil, err
	}

	img := scene.NewImage(camera.AspectRatio, f.Image.Width, f.Image.Samples, f.Image.MaxDepth)
	if f.Image.Height > 0 {
		img.Height = f.Image.Height
	}
	if img.Width < 1 || img.MaxDepth < 0 || img.Samples < 0 {
		return nil, fmt.Errorf("invalid image settings %+v", f.Image)
	}

	return &scene.Setup{Scene: s, Camera: camera, Image: img}, nil
}

func (m MaterialSpec) toMaterial() (material.Material, error) {
	switch m.Type {
	case "lambertian":
		return material.NewLambertian(m.Albedo.toCore()), nil
	case "metal":
		// Range is checked by scene validation rather than clamped here
		return &material.Metal{Albedo: m.Albedo.toCore(), Fuzzness: m.Fuzz}, nil
	case "dielectric":
		return material.NewDielectric(m.IOR), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterialType, m.Type)
	}
}
