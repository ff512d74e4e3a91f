package scene

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/geometry"
)

const everyPrimitive = `
name: every primitive
view:
  center: [0, 2, 10]
  look_at: [0, 0, 0]
  up: [0, 1, 0]
  vfov: 35
primitives:
  - {type: sphere, center: [0, 1, 0], radius: 1, material: red}
  - {type: triangle, vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]], material: tri}
  - {type: box, min: [-1, -1, -1], max: [1, 1, 1], material: box}
  - {type: rect, plane: xy, a: [0, 1], b: [0, 1], k: -3, material: back}
  - {type: rect, plane: xz, a: [0, 1], b: [0, 1], k: 4}
  - {type: rect, plane: yz, a: [0, 1], b: [0, 1], k: 5}
  - {type: cylinder, center: [3, 0, 0], radius: 0.5, y_min: 0, y_max: 2, capped: true}
  - {type: disk, center: [0, 3, 0], normal: [0, 1, 0], radius: 1}
  - {type: plane, point: [0, -2, 0], normal: [0, 1, 0], material: floor}
  - type: mesh
    material: quad
    vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
    faces: [0, 1, 2, 0, 2, 3]
    rotation: [0, 90, 0]
    center: [0, 0, 0]
  - type: voxel_grid
    min: [10, 0, 0]
    cell_size: 0.5
    dims: [4, 4, 4]
    palette: [stone, gold]
    regions:
      - {min: [0, 0, 0], max: [4, 2, 4], id: 1}
      - {min: [1, 1, 1], max: [2, 2, 2], id: 2}
`

func TestParseDescription_EveryPrimitive(t *testing.T) {
	d, err := ParseDescription([]byte(everyPrimitive))
	require.NoError(t, err)
	assert.Equal(t, "every primitive", d.Name)

	prims, err := d.Primitives(".", bvh.DefaultOptions())
	require.NoError(t, err)

	kinds := make([]geometry.Kind, len(prims))
	for i, p := range prims {
		kinds[i] = p.Kind()
	}
	assert.Equal(t, []geometry.Kind{
		geometry.KindSphere, geometry.KindTriangle, geometry.KindBox,
		geometry.KindRectXY, geometry.KindRectXZ, geometry.KindRectYZ,
		geometry.KindCylinder, geometry.KindDisk, geometry.KindPlane,
		geometry.KindMesh, geometry.KindVoxelGrid,
	}, kinds)

	view := d.Viewpoint()
	assert.Equal(t, core.NewVec3(0, 2, 10), view.Center)
	assert.Equal(t, 35.0, view.VFov)

	// Materials pass through as the YAML names
	rec, hit := prims[0].Hit(core.NewRay(core.NewVec3(0, 1, 5), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1))
	require.True(t, hit)
	assert.Equal(t, "red", rec.Material)

	// The quad mesh is rotated 90 degrees about y into the x=0 plane
	mesh, ok := prims[9].Mesh()
	require.True(t, ok)
	rec, hit = mesh.Hit(core.NewRay(core.NewVec3(5, 0.5, -0.5), core.NewVec3(-1, 0, 0)), 0.001, math.Inf(1))
	require.True(t, hit)
	assert.InDelta(t, 5.0, rec.T, 1e-9)
	assert.Equal(t, "quad", rec.Material)

	// The later region overwrites the earlier one
	grid, ok := prims[10].VoxelGrid()
	require.True(t, ok)
	assert.Equal(t, uint16(1), grid.Cell(0, 0, 0))
	assert.Equal(t, uint16(2), grid.Cell(1, 1, 1))
	assert.Equal(t, uint16(0), grid.Cell(0, 2, 0))
	assert.Equal(t, 4*2*4, grid.FilledCount())

	rec, hit = grid.Hit(core.NewRay(core.NewVec3(10.25, 5, 0.25), core.NewVec3(0, -1, 0)), 0.001, math.Inf(1))
	require.True(t, hit)
	assert.InDelta(t, 4.0, rec.T, 1e-9)
	assert.Equal(t, "stone", rec.Material)
}

func TestParseDescription_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "primitives: [unterminated"},
		{"no primitives", "name: empty"},
		{"unknown key", "primitives:\n  - {type: sphere, center: [0, 0, 0], radius: 1, colour: red}"},
		{"short vector", "primitives:\n  - {type: sphere, center: [0, 0], radius: 1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescription([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidDescription)
		})
	}
}

func TestDescription_PrimitiveErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{"unknown type", "{type: torus}", ErrInvalidDescription},
		{"sphere without center", "{type: sphere, radius: 1}", ErrInvalidDescription},
		{"two vertex triangle", "{type: triangle, vertices: [[0, 0, 0], [1, 0, 0]]}", ErrInvalidDescription},
		{"box without max", "{type: box, min: [0, 0, 0]}", ErrInvalidDescription},
		{"rect bad plane", "{type: rect, plane: xw, a: [0, 1], b: [0, 1]}", ErrInvalidDescription},
		{"rect without ranges", "{type: rect, plane: xy}", ErrInvalidDescription},
		{"disk without normal", "{type: disk, center: [0, 0, 0], radius: 1}", ErrInvalidDescription},
		{"plane without point", "{type: plane, normal: [0, 1, 0]}", ErrInvalidDescription},
		{"mesh ply and inline", "{type: mesh, ply: a.ply, vertices: [[0, 0, 0]]}", ErrInvalidDescription},
		{"mesh bad faces", "{type: mesh, vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]], faces: [0, 1]}", geometry.ErrInvalidMesh},
		{"mesh index out of range", "{type: mesh, vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]], faces: [0, 1, 3]}", geometry.ErrInvalidMesh},
		{"grid without dims", "{type: voxel_grid, min: [0, 0, 0]}", ErrInvalidDescription},
		{"grid zero dims", "{type: voxel_grid, min: [0, 0, 0], dims: [0, 1, 1]}", geometry.ErrInvalidGrid},
		{"grid id past palette", "{type: voxel_grid, min: [0, 0, 0], dims: [1, 1, 1], regions: [{min: [0, 0, 0], max: [1, 1, 1], id: 3}]}", geometry.ErrInvalidGrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDescription([]byte("primitives:\n  - " + tt.yaml))
			require.NoError(t, err)
			_, err = d.Primitives(t.TempDir(), bvh.DefaultOptions())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

const tetrahedronPLY = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 4
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
0 1 0
0 0 1
3 0 2 1
3 0 1 3
3 0 3 2
3 1 2 3
`

func TestLoadDescription_MeshFromPLY(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "models"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "tetra.ply"), []byte(tetrahedronPLY), 0644))

	path := filepath.Join(dir, "tetra-scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
primitives:
  - {type: mesh, ply: models/tetra.ply, material: tetra}
`), 0644))

	d, err := LoadDescription(path)
	require.NoError(t, err)
	assert.Equal(t, "Tetra Scene", d.Name)

	gen, err := d.Generated(filepath.Dir(path), bvh.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, gen.Primitives, 1)
	assert.Equal(t, 4, gen.Primitives[0].TriangleCount())

	// Defaults fill in a usable view
	assert.Equal(t, core.NewVec3(0, 1, 0), gen.View.Up)
	assert.Equal(t, 40.0, gen.View.VFov)
	assert.NotEqual(t, gen.View.Center, gen.View.LookAt)

	s, err := Build(d.Name, gen.Primitives, bvh.DefaultOptions(), nil)
	require.NoError(t, err)
	rec, hit := s.Hit(core.NewRay(core.NewVec3(0.2, 0.2, -5), core.NewVec3(0, 0, 1)), 0.001, math.Inf(1))
	require.True(t, hit)
	assert.InDelta(t, 5.0, rec.T, 1e-9)
	assert.Equal(t, "tetra", rec.Material)
}

func TestLoadDescription_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadDescription(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	d, err := ParseDescription([]byte("primitives:\n  - {type: mesh, ply: missing.ply}"))
	require.NoError(t, err)
	_, err = d.Primitives(dir, bvh.DefaultOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
