package scene

import (
	"math"
	"math/rand"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/geometry"
)

const (
	terrainSize   = 96 // cells along x and z
	terrainHeight = 32 // cells along y
)

// Terrain voxel ids, indexes into terrainPalette plus one
const (
	voxelEmpty uint16 = iota
	voxelStone
	voxelDirt
	voxelGrass
	voxelSnow
)

var terrainPalette = []core.Material{"stone", "dirt", "grass", "snow"}

// voxelTerrain fills a voxel grid from a sum of random sinusoids. A few
// spheres float above it so the scene tree has more than one leaf.
func voxelTerrain(rng *rand.Rand, _ bvh.Options) (Generated, error) {
	type wave struct{ fx, fz, phase, amp float64 }
	waves := make([]wave, 4)
	for i := range waves {
		waves[i] = wave{
			fx:    (rng.Float64()*2 - 1) * 0.15,
			fz:    (rng.Float64()*2 - 1) * 0.15,
			phase: rng.Float64() * 2 * math.Pi,
			amp:   float64(terrainHeight) / float64(4*(i+1)),
		}
	}

	heights := make([]int, terrainSize*terrainSize)
	for z := 0; z < terrainSize; z++ {
		for x := 0; x < terrainSize; x++ {
			h := float64(terrainHeight) / 2
			for _, w := range waves {
				h += w.amp * math.Sin(w.fx*float64(x)+w.fz*float64(z)+w.phase)
			}
			heights[z*terrainSize+x] = max(1, min(terrainHeight, int(h)))
		}
	}

	fill := func(x, y, z int) uint16 {
		h := heights[z*terrainSize+x]
		switch {
		case y >= h:
			return voxelEmpty
		case y == h-1 && h > terrainHeight*3/4:
			return voxelSnow
		case y == h-1:
			return voxelGrass
		case y >= h-3:
			return voxelDirt
		}
		return voxelStone
	}

	const cellSize = 0.25
	origin := core.NewVec3(-terrainSize*cellSize/2, 0, -terrainSize*cellSize/2)
	grid, err := geometry.NewVoxelGrid(origin, cellSize, [3]int{terrainSize, terrainHeight, terrainSize}, fill, terrainPalette)
	if err != nil {
		return Generated{}, err
	}

	prims := []geometry.Primitive{grid.Primitive()}
	for i := 0; i < 8; i++ {
		center := core.NewVec3(
			(rng.Float64()*2-1)*terrainSize*cellSize/2,
			terrainHeight*cellSize+1+rng.Float64()*3,
			(rng.Float64()*2-1)*terrainSize*cellSize/2,
		)
		prims = append(prims, geometry.NewSphere(center, 0.5+rng.Float64(), "cloud").Primitive())
	}

	return Generated{
		Primitives: prims,
		View: View{
			Center: core.NewVec3(0, 18, 26),
			LookAt: core.NewVec3(0, 3, 0),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   50,
		},
	}, nil
}
