package scene

import (
	"math/rand"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/geometry"
)

// mixedScene scatters every primitive kind over a ground plane
func mixedScene(rng *rand.Rand, opts bvh.Options) (Generated, error) {
	prims := []geometry.Primitive{groundPlane()}

	randIn := func(lo, hi float64) float64 {
		return lo + rng.Float64()*(hi-lo)
	}

	for i := 0; i < 40; i++ {
		x, z := randIn(-8, 8), randIn(-8, 8)
		switch i % 7 {
		case 0:
			r := randIn(0.2, 0.7)
			prims = append(prims, geometry.NewSphere(core.NewVec3(x, r, z), r, "sphere").Primitive())
		case 1:
			prims = append(prims, geometry.NewTriangle(
				core.NewVec3(x, 0.1, z),
				core.NewVec3(x+randIn(0.3, 1), randIn(0.5, 1.5), z),
				core.NewVec3(x, randIn(0.5, 1.5), z+randIn(0.3, 1)),
				"triangle",
			).Primitive())
		case 2:
			s := randIn(0.2, 0.6)
			prims = append(prims, geometry.NewAxisAlignedBox(
				core.NewVec3(x-s, 0, z-s), core.NewVec3(x+s, 2*s, z+s), "box",
			).Primitive())
		case 3:
			s := randIn(0.2, 0.6)
			switch rng.Intn(3) {
			case 0:
				prims = append(prims, geometry.NewRectXY(x-s, x+s, 0, 2*s, z, "rect").Primitive())
			case 1:
				prims = append(prims, geometry.NewRectXZ(x-s, x+s, z-s, z+s, randIn(0.5, 2), "rect").Primitive())
			default:
				prims = append(prims, geometry.NewRectYZ(0, 2*s, z-s, z+s, x, "rect").Primitive())
			}
		case 4:
			prims = append(prims, geometry.NewCylinder(
				core.NewVec3(x, 0, z), randIn(0.2, 0.5), 0, randIn(0.5, 2), rng.Intn(2) == 0, "cylinder",
			).Primitive())
		case 5:
			normal := core.NewVec3(randIn(-1, 1), 1, randIn(-1, 1))
			prims = append(prims, geometry.NewDisk(core.NewVec3(x, randIn(0.5, 2), z), normal, randIn(0.2, 0.6), "disk").Primitive())
		case 6:
			ico, err := IcosahedronMesh(core.NewVec3(x, 0.6, z), 0.5, core.NewVec3(0, randIn(0, 1), 0), "mesh", opts)
			if err != nil {
				return Generated{}, err
			}
			prims = append(prims, ico.Primitive())
		}
	}

	grid, err := geometry.NewVoxelGrid(core.NewVec3(-1, 0, -12), 0.25, [3]int{8, 8, 8}, func(x, y, z int) uint16 {
		if x+y+z < 10 {
			return 1
		}
		return 0
	}, []core.Material{"voxel"})
	if err != nil {
		return Generated{}, err
	}
	prims = append(prims, grid.Primitive())

	return Generated{
		Primitives: prims,
		View: View{
			Center: core.NewVec3(0, 6, 16),
			LookAt: core.NewVec3(0, 0.5, 0),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   50,
		},
	}, nil
}
