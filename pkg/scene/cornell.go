package scene

import (
	"math/rand"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/geometry"
)

// cornellSize is the edge length of the standard Cornell box
const cornellSize = 555.0

// cornellRoom builds the classic Cornell box: five walls as rectangles, a
// light panel just under the ceiling, two boxes and a sphere.
func cornellRoom(_ *rand.Rand, _ bvh.Options) (Generated, error) {
	s := cornellSize
	lightSize := 130.0
	lo, hi := (s-lightSize)/2, (s+lightSize)/2

	prims := []geometry.Primitive{
		// Floor, ceiling and back wall
		geometry.NewRectXZ(0, s, 0, s, 0, "white").Primitive(),
		geometry.NewRectXZ(0, s, 0, s, s, "white").Primitive(),
		geometry.NewRectXY(0, s, 0, s, s, "white").Primitive(),

		// Left and right walls
		geometry.NewRectYZ(0, s, 0, s, 0, "red").Primitive(),
		geometry.NewRectYZ(0, s, 0, s, s, "green").Primitive(),

		// Light panel just below the ceiling
		geometry.NewRectXZ(lo, hi, lo, hi, s-1, "light").Primitive(),

		geometry.NewAxisAlignedBox(core.NewVec3(130, 0, 65), core.NewVec3(295, 165, 230), "white").Primitive(),
		geometry.NewAxisAlignedBox(core.NewVec3(265, 0, 295), core.NewVec3(430, 330, 460), "white").Primitive(),
		geometry.NewSphere(core.NewVec3(370, 240, 150), 60, "glass").Primitive(),
	}

	return Generated{
		Primitives: prims,
		View: View{
			Center: core.NewVec3(278, 278, -800),
			LookAt: core.NewVec3(278, 278, 0),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   40,
		},
	}, nil
}
