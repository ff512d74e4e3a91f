package scene

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/geometry"
	"github.com/df07/go-raytracer-accel/pkg/loaders"
)

// ErrInvalidDescription is returned for scene files that decode but do not
// describe valid geometry
var ErrInvalidDescription = errors.New("scene: invalid description")

// Description is the YAML form of a scene. Materials are opaque names that
// are passed through to hit records untouched.
//
//	name: two spheres
//	view: {center: [0, 1, 6], look_at: [0, 0, 0], vfov: 40}
//	primitives:
//	  - {type: sphere, center: [0, 0, 0], radius: 1, material: red}
//	  - {type: plane, point: [0, -1, 0], normal: [0, 1, 0], material: floor}
type Description struct {
	Name           string          `yaml:"name"`
	View           ViewDesc        `yaml:"view"`
	PrimitiveDescs []PrimitiveDesc `yaml:"primitives"`
}

// ViewDesc is the YAML form of View
type ViewDesc struct {
	Center [3]float64 `yaml:"center"`
	LookAt [3]float64 `yaml:"look_at"`
	Up     [3]float64 `yaml:"up"`
	VFov   float64    `yaml:"vfov"`
}

// PrimitiveDesc holds the fields of every primitive type. Type selects
// which of them are read.
type PrimitiveDesc struct {
	Type     string `yaml:"type"`
	Material string `yaml:"material"`

	// sphere, cylinder, disk; the rotation pivot for mesh
	Center *[3]float64 `yaml:"center,omitempty"`
	Radius float64     `yaml:"radius,omitempty"`

	// triangle
	Vertices [][3]float64 `yaml:"vertices,omitempty"` // also mesh

	// box, voxel_grid
	Min *[3]float64 `yaml:"min,omitempty"`
	Max *[3]float64 `yaml:"max,omitempty"`

	// rect: plane is xy, xz or yz; A and B are the ranges on its two axes
	Plane string      `yaml:"plane,omitempty"`
	A     *[2]float64 `yaml:"a,omitempty"`
	B     *[2]float64 `yaml:"b,omitempty"`
	K     float64     `yaml:"k,omitempty"`

	// cylinder
	YMin   float64 `yaml:"y_min,omitempty"`
	YMax   float64 `yaml:"y_max,omitempty"`
	Capped bool    `yaml:"capped,omitempty"`

	// disk, plane
	Point  *[3]float64 `yaml:"point,omitempty"`
	Normal *[3]float64 `yaml:"normal,omitempty"`

	// mesh: either a PLY file relative to the description or inline data
	PLY      string      `yaml:"ply,omitempty"`
	Faces    []int       `yaml:"faces,omitempty"`
	Rotation *[3]float64 `yaml:"rotation,omitempty"` // degrees about x, y, z

	// voxel_grid: regions are filled in order, later ones overwrite
	CellSize float64       `yaml:"cell_size,omitempty"`
	Dims     *[3]int       `yaml:"dims,omitempty"`
	Palette  []string      `yaml:"palette,omitempty"`
	Regions  []VoxelRegion `yaml:"regions,omitempty"`
}

// VoxelRegion fills cells in [Min, Max) with ID
type VoxelRegion struct {
	Min [3]int `yaml:"min"`
	Max [3]int `yaml:"max"`
	ID  uint16 `yaml:"id"`
}

// ParseDescription decodes a YAML scene. Unknown keys are rejected.
func ParseDescription(data []byte) (*Description, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var d Description
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescription, err)
	}
	if len(d.PrimitiveDescs) == 0 {
		return nil, fmt.Errorf("%w: no primitives", ErrInvalidDescription)
	}
	return &d, nil
}

// LoadDescription reads and decodes a YAML scene file
func LoadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene description: %w", err)
	}
	d, err := ParseDescription(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = titleCase(trimExt(filepath.Base(path)))
	}
	return d, nil
}

// Viewpoint converts the view section, filling in defaults for missing fields
func (d *Description) Viewpoint() View {
	v := View{
		Center: vec(d.View.Center),
		LookAt: vec(d.View.LookAt),
		Up:     vec(d.View.Up),
		VFov:   d.View.VFov,
	}
	if v.Up.Length() == 0 {
		v.Up = core.NewVec3(0, 1, 0)
	}
	if v.VFov <= 0 {
		v.VFov = 40
	}
	if v.Center == v.LookAt {
		v.Center = v.LookAt.Add(core.NewVec3(0, 0, 1))
	}
	return v
}

// Primitives builds the described geometry. Relative PLY paths are resolved
// against baseDir; opts is used for mesh trees.
func (d *Description) Primitives(baseDir string, opts bvh.Options) ([]geometry.Primitive, error) {
	prims := make([]geometry.Primitive, 0, len(d.PrimitiveDescs))
	for i, pd := range d.PrimitiveDescs {
		p, err := pd.build(baseDir, opts)
		if err != nil {
			return nil, fmt.Errorf("primitive %d (%s): %w", i, pd.Type, err)
		}
		prims = append(prims, p)
	}
	return prims, nil
}

// Generated converts the description into the same form the procedural
// generators produce
func (d *Description) Generated(baseDir string, opts bvh.Options) (Generated, error) {
	prims, err := d.Primitives(baseDir, opts)
	if err != nil {
		return Generated{}, err
	}
	return Generated{Primitives: prims, View: d.Viewpoint()}, nil
}

func (pd PrimitiveDesc) build(baseDir string, opts bvh.Options) (geometry.Primitive, error) {
	var mat core.Material = pd.Material

	switch pd.Type {
	case "sphere":
		if pd.Center == nil {
			return geometry.Primitive{}, missing("center")
		}
		return geometry.NewSphere(vec(*pd.Center), pd.Radius, mat).Primitive(), nil

	case "triangle":
		if len(pd.Vertices) != 3 {
			return geometry.Primitive{}, fmt.Errorf("%w: triangle needs 3 vertices, got %d", ErrInvalidDescription, len(pd.Vertices))
		}
		return geometry.NewTriangle(vec(pd.Vertices[0]), vec(pd.Vertices[1]), vec(pd.Vertices[2]), mat).Primitive(), nil

	case "box":
		if pd.Min == nil || pd.Max == nil {
			return geometry.Primitive{}, missing("min and max")
		}
		return geometry.NewAxisAlignedBox(vec(*pd.Min), vec(*pd.Max), mat).Primitive(), nil

	case "rect":
		if pd.A == nil || pd.B == nil {
			return geometry.Primitive{}, missing("a and b")
		}
		a, b := *pd.A, *pd.B
		switch pd.Plane {
		case "xy":
			return geometry.NewRectXY(a[0], a[1], b[0], b[1], pd.K, mat).Primitive(), nil
		case "xz":
			return geometry.NewRectXZ(a[0], a[1], b[0], b[1], pd.K, mat).Primitive(), nil
		case "yz":
			return geometry.NewRectYZ(a[0], a[1], b[0], b[1], pd.K, mat).Primitive(), nil
		}
		return geometry.Primitive{}, fmt.Errorf("%w: rect plane %q is not xy, xz or yz", ErrInvalidDescription, pd.Plane)

	case "cylinder":
		if pd.Center == nil {
			return geometry.Primitive{}, missing("center")
		}
		return geometry.NewCylinder(vec(*pd.Center), pd.Radius, pd.YMin, pd.YMax, pd.Capped, mat).Primitive(), nil

	case "disk":
		if pd.Center == nil || pd.Normal == nil {
			return geometry.Primitive{}, missing("center and normal")
		}
		return geometry.NewDisk(vec(*pd.Center), vec(*pd.Normal), pd.Radius, mat).Primitive(), nil

	case "plane":
		if pd.Point == nil || pd.Normal == nil {
			return geometry.Primitive{}, missing("point and normal")
		}
		return geometry.NewPlane(vec(*pd.Point), vec(*pd.Normal), mat).Primitive(), nil

	case "mesh":
		return pd.buildMesh(baseDir, mat, opts)

	case "voxel_grid":
		return pd.buildVoxelGrid()
	}
	return geometry.Primitive{}, fmt.Errorf("%w: unknown primitive type %q", ErrInvalidDescription, pd.Type)
}

func (pd PrimitiveDesc) buildMesh(baseDir string, mat core.Material, opts bvh.Options) (geometry.Primitive, error) {
	var vertices []core.Vec3
	var faces []int

	switch {
	case pd.PLY != "" && len(pd.Vertices) > 0:
		return geometry.Primitive{}, fmt.Errorf("%w: mesh has both ply and inline vertices", ErrInvalidDescription)
	case pd.PLY != "":
		path := pd.PLY
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := loaders.LoadPLY(path)
		if err != nil {
			return geometry.Primitive{}, err
		}
		vertices, faces = data.Vertices, data.Faces
	default:
		vertices = make([]core.Vec3, len(pd.Vertices))
		for i, v := range pd.Vertices {
			vertices[i] = vec(v)
		}
		faces = pd.Faces
	}

	meshOpts := &geometry.TriangleMeshOptions{BVH: opts}
	if pd.Rotation != nil {
		r := vec(*pd.Rotation).Multiply(degreesToRadians)
		meshOpts.Rotation = &r
	}
	if pd.Center != nil {
		c := vec(*pd.Center)
		meshOpts.Center = &c
	}

	mesh, err := geometry.NewTriangleMesh(vertices, faces, mat, meshOpts)
	if err != nil {
		return geometry.Primitive{}, err
	}
	return mesh.Primitive(), nil
}

func (pd PrimitiveDesc) buildVoxelGrid() (geometry.Primitive, error) {
	if pd.Min == nil || pd.Dims == nil {
		return geometry.Primitive{}, missing("min and dims")
	}
	palette := make([]core.Material, len(pd.Palette))
	for i, name := range pd.Palette {
		palette[i] = name
	}
	regions := pd.Regions

	fill := func(x, y, z int) uint16 {
		for i := len(regions) - 1; i >= 0; i-- {
			r := regions[i]
			if x >= r.Min[0] && x < r.Max[0] &&
				y >= r.Min[1] && y < r.Max[1] &&
				z >= r.Min[2] && z < r.Max[2] {
				return r.ID
			}
		}
		return 0
	}

	cellSize := pd.CellSize
	if cellSize == 0 {
		cellSize = 1
	}
	grid, err := geometry.NewVoxelGrid(vec(*pd.Min), cellSize, *pd.Dims, fill, palette)
	if err != nil {
		return geometry.Primitive{}, err
	}
	return grid.Primitive(), nil
}

const degreesToRadians = math.Pi / 180

func vec(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

func missing(fields string) error {
	return fmt.Errorf("%w: missing %s", ErrInvalidDescription, fields)
}
