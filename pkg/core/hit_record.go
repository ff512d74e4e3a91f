package core

// Material is an opaque surface reference carried through intersection
// queries. The intersection engine never inspects it.
type Material any

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	T         float64  // Parameter t along the ray
	Point     Vec3     // Point of intersection
	Normal    Vec3     // Surface normal, always facing against the ray
	Material  Material // Material of the hit object
	U, V      float64  // Surface parameters
	FrontFace bool     // Whether ray hit the outward-facing side
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray Ray, outwardNormal Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
