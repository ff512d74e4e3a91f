package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-raytracer-accel/pkg/core"
)

// maxGridCells caps the allocation a single grid may request
const maxGridCells = 1 << 30

// VoxelGrid is a dense regular grid of cubic cells. Cell ids are stored in
// bricks of 8³ cells, each brick laid out in Morton order. Id 0 is empty;
// id k uses palette[k-1].
//
// The grid is not partitioned by a tree. Rays march it cell by cell.
type VoxelGrid struct {
	min      core.Vec3
	cellSize float64
	dims     [3]int
	bricks   [3]int // brick count per axis
	cells    []uint16
	palette  []core.Material
	filled   int
	bounds   core.AABB
}

// NewVoxelGrid creates a grid with its minimum corner at min. fill is called
// once per cell and returns that cell's material id; a nil fill leaves the
// grid empty.
func NewVoxelGrid(min core.Vec3, cellSize float64, dims [3]int, fill func(x, y, z int) uint16, palette []core.Material) (*VoxelGrid, error) {
	if !min.IsFinite() {
		return nil, fmt.Errorf("%w: non-finite origin %v", ErrInvalidGrid, min)
	}
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("%w: cell size %v", ErrInvalidGrid, cellSize)
	}

	g := &VoxelGrid{
		min:      min,
		cellSize: cellSize,
		dims:     dims,
		palette:  palette,
	}
	total := brickCells
	for axis, d := range dims {
		if d <= 0 {
			return nil, fmt.Errorf("%w: dims %v", ErrInvalidGrid, dims)
		}
		g.bricks[axis] = (d + brickMask) >> brickShift
		total *= g.bricks[axis]
		if total > maxGridCells {
			return nil, fmt.Errorf("%w: dims %v exceed %d cells", ErrInvalidGrid, dims, maxGridCells)
		}
	}
	g.cells = make([]uint16, total)

	extent := core.NewVec3(float64(dims[0]), float64(dims[1]), float64(dims[2])).Multiply(cellSize)
	g.bounds = core.AABB{Min: min, Max: min.Add(extent)}

	if fill == nil {
		return g, nil
	}
	for z := 0; z < dims[2]; z++ {
		for y := 0; y < dims[1]; y++ {
			for x := 0; x < dims[0]; x++ {
				id := fill(x, y, z)
				if id == 0 {
					continue
				}
				if int(id) > len(palette) {
					return nil, fmt.Errorf("%w: cell (%d,%d,%d) id %d has no palette entry (palette size %d)",
						ErrInvalidGrid, x, y, z, id, len(palette))
				}
				g.cells[g.index(x, y, z)] = id
				g.filled++
			}
		}
	}
	return g, nil
}

// index maps cell coordinates to the flat buffer: brick-major, Morton within
func (g *VoxelGrid) index(x, y, z int) int {
	bx, by, bz := x>>brickShift, y>>brickShift, z>>brickShift
	brick := (bz*g.bricks[1]+by)*g.bricks[0] + bx
	return brick*brickCells + morton3(x&brickMask, y&brickMask, z&brickMask)
}

func (g *VoxelGrid) inside(x, y, z int) bool {
	return x >= 0 && x < g.dims[0] && y >= 0 && y < g.dims[1] && z >= 0 && z < g.dims[2]
}

// Cell returns the id at (x,y,z), or 0 outside the grid
func (g *VoxelGrid) Cell(x, y, z int) uint16 {
	if !g.inside(x, y, z) {
		return 0
	}
	return g.cells[g.index(x, y, z)]
}

// Dims returns the cell count per axis
func (g *VoxelGrid) Dims() [3]int {
	return g.dims
}

// CellSize returns the edge length of one cell
func (g *VoxelGrid) CellSize() float64 {
	return g.cellSize
}

// FilledCount returns the number of non-empty cells
func (g *VoxelGrid) FilledCount() int {
	return g.filled
}

func (g *VoxelGrid) isShape() {}

// Primitive wraps the grid for use in a scene or tree
func (g *VoxelGrid) Primitive() Primitive {
	return Primitive{kind: KindVoxelGrid, shape: g}
}

// BoundingBox returns the grid's outer box
func (g *VoxelGrid) BoundingBox() (core.AABB, bool) {
	return g.bounds.Pad(core.BoundsEpsilon), g.bounds.IsFinite()
}

// enter slab-tests the ray against the grid box. axis is the axis whose
// face the ray entered through, or -1 if the ray starts inside.
func (g *VoxelGrid) enter(ray core.Ray, tMin, tMax float64) (tEnter, tExit float64, axis int, ok bool) {
	tEnter, tExit, axis = tMin, tMax, -1
	for a := 0; a < 3; a++ {
		o, d := ray.Origin.Axis(a), ray.Direction.Axis(a)
		lo, hi := g.bounds.Min.Axis(a), g.bounds.Max.Axis(a)
		if d == 0 {
			if o < lo || o > hi {
				return 0, 0, -1, false
			}
			continue
		}
		t0, t1 := (lo-o)/d, (hi-o)/d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tEnter {
			tEnter, axis = t0, a
		}
		if t1 < tExit {
			tExit = t1
		}
		if tEnter > tExit {
			return 0, 0, -1, false
		}
	}
	return tEnter, tExit, axis, true
}

// Hit marches the grid from the entry point and returns the first filled
// cell along the ray.
func (g *VoxelGrid) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	if ray.Direction.LengthSquared() < zeroDirectionEpsilon {
		return core.HitRecord{}, false
	}
	t, tExit, axis, ok := g.enter(ray, tMin, tMax)
	if !ok {
		return core.HitRecord{}, false
	}
	if axis < 0 {
		// Started inside: report the dominant direction axis as the face
		axis = dominantAxis(ray.Direction)
	}

	entry := ray.At(t)
	var cell, step [3]int
	var next, delta [3]float64
	for a := 0; a < 3; a++ {
		c := int(math.Floor((entry.Axis(a) - g.min.Axis(a)) / g.cellSize))
		cell[a] = max(0, min(c, g.dims[a]-1))

		o, d := ray.Origin.Axis(a), ray.Direction.Axis(a)
		switch {
		case d > 0:
			step[a] = 1
			next[a] = (g.min.Axis(a) + float64(cell[a]+1)*g.cellSize - o) / d
			delta[a] = g.cellSize / d
		case d < 0:
			step[a] = -1
			next[a] = (g.min.Axis(a) + float64(cell[a])*g.cellSize - o) / d
			delta[a] = -g.cellSize / d
		default:
			next[a] = math.Inf(1)
			delta[a] = math.Inf(1)
		}
	}

	for {
		if id := g.cells[g.index(cell[0], cell[1], cell[2])]; id != 0 {
			return g.record(ray, t, cell, axis, step, id), true
		}

		a := 0
		if next[1] < next[a] {
			a = 1
		}
		if next[2] < next[a] {
			a = 2
		}
		if next[a] > tExit {
			return core.HitRecord{}, false
		}

		// Rounding at the clamped entry cell can put a boundary behind t
		t = math.Max(t, next[a])
		cell[a] += step[a]
		if cell[a] < 0 || cell[a] >= g.dims[a] {
			return core.HitRecord{}, false
		}
		next[a] += delta[a]
		axis = a
	}
}

func (g *VoxelGrid) record(ray core.Ray, t float64, cell [3]int, axis int, step [3]int, id uint16) core.HitRecord {
	point := ray.At(t)

	// The entered face points back along the step direction
	sign := -float64(step[axis])
	if sign == 0 {
		sign = -math.Copysign(1, ray.Direction.Axis(axis))
	}
	outward := core.Vec3{}.WithAxis(axis, sign)

	ua, va := (axis+1)%3, (axis+2)%3
	rec := core.HitRecord{
		T:        t,
		Point:    point,
		Material: g.palette[id-1],
		U:        g.cellFraction(point, cell, ua),
		V:        g.cellFraction(point, cell, va),
	}
	rec.SetFaceNormal(ray, outward)
	return rec
}

// cellFraction is the position of p inside its cell along one axis, in [0,1]
func (g *VoxelGrid) cellFraction(p core.Vec3, cell [3]int, axis int) float64 {
	f := (p.Axis(axis)-g.min.Axis(axis))/g.cellSize - float64(cell[axis])
	return math.Max(0, math.Min(1, f))
}

func dominantAxis(v core.Vec3) int {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	switch {
	case ax >= ay && ax >= az:
		return 0
	case ay >= az:
		return 1
	}
	return 2
}
