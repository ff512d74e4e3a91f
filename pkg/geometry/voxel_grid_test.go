package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raytracer-accel/pkg/core"
)

// unmorton3 inverts morton3 for codes below brickCells
func unmorton3(code int) (x, y, z int) {
	compact := func(v int) int {
		return (v & 1) | (v>>2)&2 | (v>>4)&4
	}
	return compact(code), compact(code >> 1), compact(code >> 2)
}

func TestMorton3_RoundTrip(t *testing.T) {
	seen := make(map[int]bool, brickCells)
	for z := 0; z < brickSize; z++ {
		for y := 0; y < brickSize; y++ {
			for x := 0; x < brickSize; x++ {
				code := morton3(x, y, z)
				require.GreaterOrEqual(t, code, 0)
				require.Less(t, code, brickCells)
				require.False(t, seen[code], "duplicate code %d", code)
				seen[code] = true

				dx, dy, dz := unmorton3(code)
				assert.Equal(t, [3]int{x, y, z}, [3]int{dx, dy, dz})
			}
		}
	}
	assert.Equal(t, 0b111, morton3(1, 1, 1))
	assert.Equal(t, 0b001_000, morton3(2, 0, 0))
}

func TestVoxelGrid_ZeroDirectionNeverHits(t *testing.T) {
	g, err := NewVoxelGrid(core.Vec3{}, 1, [3]int{2, 2, 2}, func(x, y, z int) uint16 {
		return 1
	}, []core.Material{"stone"})
	require.NoError(t, err)

	for _, origin := range []core.Vec3{
		core.NewVec3(0.5, 0.5, 0.5),
		core.NewVec3(1, 1, 1),
		core.NewVec3(-1, 0.5, 0.5),
	} {
		ray := core.Ray{Origin: origin}
		_, ok := g.Hit(ray, 0, math.Inf(1))
		assert.False(t, ok, "origin %v", origin)
		assert.False(t, g.Primitive().Occludes(ray, 0, math.Inf(1)), "origin %v", origin)
	}

	// A very short direction still marches the grid
	ray := core.Ray{Origin: core.NewVec3(-1, 0.5, 0.5), Direction: core.NewVec3(1e-6, 0, 0)}
	rec, ok := g.Hit(ray, 0, math.Inf(1))
	require.True(t, ok)
	assert.InDelta(t, 1e6, rec.T, 1e-3)
	assert.Equal(t, "stone", rec.Material)
}

func TestVoxelGrid_IndexIsInjective(t *testing.T) {
	g, err := NewVoxelGrid(core.Vec3{}, 1, [3]int{10, 9, 17}, nil, nil)
	require.NoError(t, err)

	seen := make(map[int]bool)
	for z := 0; z < 17; z++ {
		for y := 0; y < 9; y++ {
			for x := 0; x < 10; x++ {
				i := g.index(x, y, z)
				require.Less(t, i, len(g.cells))
				require.False(t, seen[i])
				seen[i] = true
			}
		}
	}
	// 2×2×3 bricks of 512 cells
	assert.Len(t, g.cells, 12*brickCells)
}

func TestNewVoxelGrid_Errors(t *testing.T) {
	fillOne := func(x, y, z int) uint16 { return 1 }

	tests := []struct {
		name     string
		min      core.Vec3
		cellSize float64
		dims     [3]int
		fill     func(x, y, z int) uint16
	}{
		{"zero dim", core.Vec3{}, 1, [3]int{0, 1, 1}, nil},
		{"negative dim", core.Vec3{}, 1, [3]int{4, -1, 1}, nil},
		{"zero cell size", core.Vec3{}, 0, [3]int{1, 1, 1}, nil},
		{"NaN cell size", core.Vec3{}, math.NaN(), [3]int{1, 1, 1}, nil},
		{"NaN origin", core.NewVec3(math.NaN(), 0, 0), 1, [3]int{1, 1, 1}, nil},
		{"missing palette entry", core.Vec3{}, 1, [3]int{2, 2, 2}, fillOne},
		{"too large", core.Vec3{}, 1, [3]int{1 << 12, 1 << 12, 1 << 12}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVoxelGrid(tt.min, tt.cellSize, tt.dims, tt.fill, nil)
			assert.ErrorIs(t, err, ErrInvalidGrid)
		})
	}
}

func TestVoxelGrid_Accessors(t *testing.T) {
	g, err := NewVoxelGrid(core.NewVec3(-1, -1, -1), 0.5, [3]int{4, 4, 4}, func(x, y, z int) uint16 {
		if y == 0 {
			return uint16(1 + x%2)
		}
		return 0
	}, []core.Material{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, [3]int{4, 4, 4}, g.Dims())
	assert.Equal(t, 0.5, g.CellSize())
	assert.Equal(t, 16, g.FilledCount())
	assert.Equal(t, uint16(1), g.Cell(0, 0, 3))
	assert.Equal(t, uint16(2), g.Cell(1, 0, 3))
	assert.Equal(t, uint16(0), g.Cell(1, 1, 3))
	assert.Equal(t, uint16(0), g.Cell(-1, 0, 0))
	assert.Equal(t, uint16(0), g.Cell(4, 0, 0))

	b, ok := g.BoundingBox()
	require.True(t, ok)
	assert.True(t, b.Min.ApproxEquals(core.NewVec3(-1, -1, -1), 1e-12))
	assert.True(t, b.Max.ApproxEquals(core.NewVec3(1, 1, 1), 1e-12))
}

func singleCellGrid(t *testing.T) *VoxelGrid {
	t.Helper()
	g, err := NewVoxelGrid(core.Vec3{}, 1, [3]int{8, 8, 8}, func(x, y, z int) uint16 {
		if x == 3 && y == 4 && z == 5 {
			return 1
		}
		return 0
	}, []core.Material{"stone"})
	require.NoError(t, err)
	return g
}

func TestVoxelGrid_Hit(t *testing.T) {
	g := singleCellGrid(t)

	tests := []struct {
		name   string
		ray    core.Ray
		tMax   float64
		hit    bool
		t      float64
		normal core.Vec3
		u, v   float64
	}{
		{
			name:   "enters grid then marches along x",
			ray:    core.NewRay(core.NewVec3(-5, 4.5, 5.25), core.NewVec3(1, 0, 0)),
			tMax:   math.Inf(1),
			hit:    true,
			t:      8,
			normal: core.NewVec3(-1, 0, 0),
			u:      0.5,
			v:      0.25,
		},
		{
			name:   "starts inside the grid",
			ray:    core.NewRay(core.NewVec3(3.5, 4.5, 0.5), core.NewVec3(0, 0, 1)),
			tMax:   math.Inf(1),
			hit:    true,
			t:      4.5,
			normal: core.NewVec3(0, 0, -1),
			u:      0.5,
			v:      0.5,
		},
		{
			name:   "from above",
			ray:    core.NewRay(core.NewVec3(3.2, 20, 5.7), core.NewVec3(0, -2, 0)),
			tMax:   math.Inf(1),
			hit:    true,
			t:      7.5,
			normal: core.NewVec3(0, 1, 0),
			u:      0.7,
			v:      0.2,
		},
		{
			name: "interval ends before the cell",
			ray:  core.NewRay(core.NewVec3(-5, 4.5, 5.5), core.NewVec3(1, 0, 0)),
			tMax: 7.9,
		},
		{
			name: "passes beside the cell",
			ray:  core.NewRay(core.NewVec3(-5, 4.5, 6.5), core.NewVec3(1, 0, 0)),
			tMax: math.Inf(1),
		},
		{
			name: "misses the grid",
			ray:  core.NewRay(core.NewVec3(-5, 9, 5.5), core.NewVec3(1, 0, 0)),
			tMax: math.Inf(1),
		},
		{
			name: "pointing away",
			ray:  core.NewRay(core.NewVec3(-5, 4.5, 5.5), core.NewVec3(-1, 0, 0)),
			tMax: math.Inf(1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := g.Hit(tt.ray, 0.001, tt.tMax)
			require.Equal(t, tt.hit, ok)
			if !ok {
				return
			}
			assert.InDelta(t, tt.t, hit.T, 1e-9)
			assert.True(t, hit.Normal.ApproxEquals(tt.normal, 1e-12), "normal %v", hit.Normal)
			assert.True(t, hit.FrontFace)
			assert.InDelta(t, tt.u, hit.U, 1e-9)
			assert.InDelta(t, tt.v, hit.V, 1e-9)
			assert.Equal(t, "stone", hit.Material)
		})
	}
}

func TestVoxelGrid_MatchesCellBoxes(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	dims := [3]int{12, 7, 9}
	origin := core.NewVec3(-2, 1, -3)
	const cellSize = 0.75

	g, err := NewVoxelGrid(origin, cellSize, dims, func(x, y, z int) uint16 {
		if rng.Float64() < 0.04 {
			return 1
		}
		return 0
	}, []core.Material{"v"})
	require.NoError(t, err)
	require.Greater(t, g.FilledCount(), 0)

	// One box per filled cell is the reference answer
	var boxes []Primitive
	for z := 0; z < dims[2]; z++ {
		for y := 0; y < dims[1]; y++ {
			for x := 0; x < dims[0]; x++ {
				if g.Cell(x, y, z) == 0 {
					continue
				}
				lo := origin.Add(core.NewVec3(float64(x), float64(y), float64(z)).Multiply(cellSize))
				hi := lo.Add(core.NewVec3(cellSize, cellSize, cellSize))
				boxes = append(boxes, NewAxisAlignedBox(lo, hi, "v").Primitive())
			}
		}
	}

	bounds, _ := g.BoundingBox()
	center := bounds.Center()
	hits := 0
	for i := 0; i < 2000; i++ {
		// Origins on a sphere outside the grid, aimed at jittered interior points
		dir := core.NewVec3(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()).Normalize()
		from := center.Add(dir.Multiply(30))
		target := center.Add(core.NewVec3(rng.Float64()*8-4, rng.Float64()*5-2.5, rng.Float64()*6-3))
		ray := core.NewRay(from, target.Subtract(from))

		want, wantOK := HitList(boxes, ray, 0.001, math.Inf(1))
		got, gotOK := g.Hit(ray, 0.001, math.Inf(1))
		require.Equal(t, wantOK, gotOK, "ray %d", i)
		if wantOK {
			hits++
			assert.InDelta(t, want.T, got.T, 1e-9, "ray %d", i)
			assert.True(t, bounds.Contains(got.Point, 1e-9))
		}
	}
	assert.Greater(t, hits, 100)
}
