package scene

import (
	"math"
	"math/rand"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/geometry"
)

// meshShowcase places a rotated box, pyramid and icosahedron on the ground
func meshShowcase(_ *rand.Rand, opts bvh.Options) (Generated, error) {
	box, err := BoxMesh(core.NewVec3(-2, 0.5, 0), core.NewVec3(1, 1, 1), core.NewVec3(0, math.Pi/6, 0), "red_metal", opts)
	if err != nil {
		return Generated{}, err
	}
	pyramid, err := PyramidMesh(core.NewVec3(0, 1, 0), 1.5, 2.0, core.NewVec3(0, math.Pi/4, 0), "blue", opts)
	if err != nil {
		return Generated{}, err
	}
	ico, err := IcosahedronMesh(core.NewVec3(2, 0.8, 0), 0.8, core.NewVec3(0, math.Pi/3, 0), "gold", opts)
	if err != nil {
		return Generated{}, err
	}

	return Generated{
		Primitives: []geometry.Primitive{
			groundPlane(),
			box.Primitive(),
			pyramid.Primitive(),
			ico.Primitive(),
		},
		View: View{
			Center: core.NewVec3(0, 2, 6),
			LookAt: core.NewVec3(0, 1, 0),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   45,
		},
	}, nil
}

// meshOptions rotates about center when rotation is non-zero
func meshOptions(center, rotation core.Vec3, opts bvh.Options) *geometry.TriangleMeshOptions {
	o := &geometry.TriangleMeshOptions{BVH: opts}
	if rotation.X != 0 || rotation.Y != 0 || rotation.Z != 0 {
		o.Rotation = &rotation
		o.Center = &center
	}
	return o
}

// BoxMesh creates a triangle mesh representing a box of the given size
func BoxMesh(center, size, rotation core.Vec3, material core.Material, opts bvh.Options) (*geometry.TriangleMesh, error) {
	h := size.Multiply(0.5)
	vertices := []core.Vec3{
		center.Add(core.NewVec3(-h.X, -h.Y, -h.Z)), // 0: left-bottom-back
		center.Add(core.NewVec3(+h.X, -h.Y, -h.Z)), // 1: right-bottom-back
		center.Add(core.NewVec3(+h.X, +h.Y, -h.Z)), // 2: right-top-back
		center.Add(core.NewVec3(-h.X, +h.Y, -h.Z)), // 3: left-top-back
		center.Add(core.NewVec3(-h.X, -h.Y, +h.Z)), // 4: left-bottom-front
		center.Add(core.NewVec3(+h.X, -h.Y, +h.Z)), // 5: right-bottom-front
		center.Add(core.NewVec3(+h.X, +h.Y, +h.Z)), // 6: right-top-front
		center.Add(core.NewVec3(-h.X, +h.Y, +h.Z)), // 7: left-top-front
	}

	// Two triangles per face, wound outward
	faces := []int{
		0, 2, 1, 0, 3, 2, // back (Z-)
		4, 5, 6, 4, 6, 7, // front (Z+)
		0, 4, 7, 0, 7, 3, // left (X-)
		1, 2, 6, 1, 6, 5, // right (X+)
		0, 1, 5, 0, 5, 4, // bottom (Y-)
		3, 7, 6, 3, 6, 2, // top (Y+)
	}

	return geometry.NewTriangleMesh(vertices, faces, material, meshOptions(center, rotation, opts))
}

// PyramidMesh creates a square-based pyramid centered on center
func PyramidMesh(center core.Vec3, baseSize, height float64, rotation core.Vec3, material core.Material, opts bvh.Options) (*geometry.TriangleMesh, error) {
	hb, hh := baseSize*0.5, height*0.5
	vertices := []core.Vec3{
		center.Add(core.NewVec3(-hb, -hh, -hb)), // 0: left-back
		center.Add(core.NewVec3(+hb, -hh, -hb)), // 1: right-back
		center.Add(core.NewVec3(+hb, -hh, +hb)), // 2: right-front
		center.Add(core.NewVec3(-hb, -hh, +hb)), // 3: left-front
		center.Add(core.NewVec3(0, +hh, 0)),     // 4: apex
	}

	faces := []int{
		0, 1, 2, 0, 2, 3, // base
		0, 4, 1,
		1, 4, 2,
		2, 4, 3,
		3, 4, 0,
	}

	return geometry.NewTriangleMesh(vertices, faces, material, meshOptions(center, rotation, opts))
}

// IcosahedronMesh creates a 20-sided mesh whose vertices lie on a sphere of radius
func IcosahedronMesh(center core.Vec3, radius float64, rotation core.Vec3, material core.Material, opts bvh.Options) (*geometry.TriangleMesh, error) {
	phi := (1 + math.Sqrt(5)) / 2
	scale := radius / math.Sqrt(1+phi*phi)

	unit := []core.Vec3{
		{X: -1, Y: phi}, {X: 1, Y: phi}, {X: -1, Y: -phi}, {X: 1, Y: -phi},
		{Y: -1, Z: phi}, {Y: 1, Z: phi}, {Y: -1, Z: -phi}, {Y: 1, Z: -phi},
		{X: phi, Z: -1}, {X: phi, Z: 1}, {X: -phi, Z: -1}, {X: -phi, Z: 1},
	}
	vertices := make([]core.Vec3, len(unit))
	for i, v := range unit {
		vertices[i] = center.Add(v.Multiply(scale))
	}

	faces := []int{
		// 5 faces around vertex 0
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		// 5 adjacent faces
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		// 5 faces around vertex 3
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		// 5 adjacent faces
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	return geometry.NewTriangleMesh(vertices, faces, material, meshOptions(center, rotation, opts))
}
