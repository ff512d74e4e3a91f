package scene

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/geometry"
)

// ErrUnknownScene is returned for a scene name with no generator
var ErrUnknownScene = errors.New("scene: unknown scene")

// View is the suggested viewpoint for looking at a scene
type View struct {
	Center core.Vec3 // Camera position
	LookAt core.Vec3 // Point the camera looks at
	Up     core.Vec3 // Up direction
	VFov   float64   // Vertical field of view in degrees
}

// Generated is the output of a scene generator
type Generated struct {
	Primitives []geometry.Primitive
	View       View
}

type generator struct {
	description string
	build       func(rng *rand.Rand, opts bvh.Options) (Generated, error)
}

var generators = map[string]generator{
	"spheregrid": {"20x20 grid of spheres on a ground plane", sphereGrid},
	"soup":       {"random triangle soup, one top-level primitive per triangle", triangleSoup},
	"meshes":     {"box, pyramid and icosahedron meshes on a ground plane", meshShowcase},
	"terrain":    {"voxel height-field terrain", voxelTerrain},
	"cornell":    {"Cornell box room built from rectangles and boxes", cornellRoom},
	"mixed":      {"one or more of every primitive kind", mixedScene},
}

// Names returns the generator names in sorted order
func Names() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the one-line description of a generator
func Describe(name string) string {
	return generators[name].description
}

// Generate runs the named generator. The same seed always produces the
// same primitives.
func Generate(name string, seed int64, opts bvh.Options) (Generated, error) {
	g, ok := generators[name]
	if !ok {
		return Generated{}, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	out, err := g.build(rand.New(rand.NewSource(seed)), opts)
	if err != nil {
		return Generated{}, fmt.Errorf("generate %s: %w", name, err)
	}
	return out, nil
}

// Build creates a scene over prims and builds its tree
func Build(name string, prims []geometry.Primitive, opts bvh.Options, logger *zap.Logger) (*Scene, error) {
	s := New(name, opts, logger)
	s.Add(prims...)
	if _, err := s.RebuildBVH(); err != nil {
		return nil, err
	}
	return s, nil
}

// groundPlane is the y=0 plane most generated scenes stand on
func groundPlane() geometry.Primitive {
	return geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), "ground").Primitive()
}
