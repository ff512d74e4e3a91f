package core

import "math"

const (
	// RayEpsilon is the default lower bound on t for secondary rays, which
	// keeps a ray from re-hitting the surface it was spawned from.
	RayEpsilon = 1e-4

	// BoundsEpsilon pads flat bounding boxes so every axis has thickness.
	BoundsEpsilon = 1e-4
)

// Ray represents a ray with an origin and direction.
// Direction does not have to be unit length.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a new ray
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// RayInv caches the per-ray values the slab test needs: the inverse
// direction and, per axis, whether that direction is negative.
// A zero direction component yields an infinite inverse, which the slab
// test treats as "parallel to this slab".
type RayInv struct {
	Inv  Vec3
	Sign [3]int
}

// NewRayInv precomputes inverse direction and signs for a ray
func NewRayInv(ray Ray) RayInv {
	inv := Vec3{1 / ray.Direction.X, 1 / ray.Direction.Y, 1 / ray.Direction.Z}
	return RayInv{
		Inv:  inv,
		Sign: [3]int{signBit(inv.X), signBit(inv.Y), signBit(inv.Z)},
	}
}

func signBit(v float64) int {
	if math.Signbit(v) {
		return 1
	}
	return 0
}
