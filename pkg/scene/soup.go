package scene

import (
	"math/rand"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/geometry"
)

const (
	soupTriangles = 20000
	soupExtent    = 10.0
	soupMaxEdge   = 0.6
)

// triangleSoup scatters small random triangles through a cube. Every
// triangle is its own top-level primitive, so the scene tree partitions
// them directly.
func triangleSoup(rng *rand.Rand, _ bvh.Options) (Generated, error) {
	randIn := func(lo, hi float64) float64 {
		return lo + rng.Float64()*(hi-lo)
	}
	jitter := func() core.Vec3 {
		return core.NewVec3(
			randIn(-soupMaxEdge, soupMaxEdge),
			randIn(-soupMaxEdge, soupMaxEdge),
			randIn(-soupMaxEdge, soupMaxEdge),
		)
	}

	prims := make([]geometry.Primitive, 0, soupTriangles)
	for i := 0; i < soupTriangles; i++ {
		a := core.NewVec3(
			randIn(-soupExtent, soupExtent),
			randIn(-soupExtent, soupExtent),
			randIn(-soupExtent, soupExtent),
		)
		tri := geometry.NewTriangle(a, a.Add(jitter()), a.Add(jitter()), i%8)
		prims = append(prims, tri.Primitive())
	}

	return Generated{
		Primitives: prims,
		View: View{
			Center: core.NewVec3(0, 0, 3*soupExtent),
			LookAt: core.NewVec3(0, 0, 0),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   45,
		},
	}, nil
}
