package scene

import (
	"math"
	"math/rand"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/geometry"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS, cubed
	lc := l + 0.3963377774*a + 0.2158037573*b
	mc := l - 0.1055613458*a - 0.0638541728*b
	sc := l - 0.0894841775*a - 1.2914855480*b
	lc, mc, sc = lc*lc*lc, mc*mc*mc, sc*sc*sc

	// LMS to linear RGB
	r := +4.0767416621*lc - 3.3077115913*mc + 0.2309699292*sc
	g := -1.2684380046*lc + 2.6097574011*mc - 0.3413193965*sc
	blue := -0.0041960863*lc - 0.7034186147*mc + 1.7076147010*sc

	return core.NewVec3(
		math.Max(0, math.Min(1, r)),
		math.Max(0, math.Min(1, g)),
		math.Max(0, math.Min(1, blue)),
	)
}

const sphereGridSize = 20

// sphereGrid lays out sphereGridSize² spheres over a 9x9 area centered on
// x=z=4.5. Each sphere's material is its OKLCH-derived color.
func sphereGrid(_ *rand.Rand, _ bvh.Options) (Generated, error) {
	prims := []geometry.Primitive{groundPlane()}

	targetArea := 9.0
	spacing := targetArea / float64(sphereGridSize-1)
	radius := math.Max(0.02, math.Min(0.35, spacing*0.35))

	for i := 0; i < sphereGridSize; i++ {
		for j := 0; j < sphereGridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5

			// Hue across X, chroma across Z
			hue := float64(i) / float64(sphereGridSize-1) * 360.0
			chroma := 0.05 + float64(j)/float64(sphereGridSize-1)*0.20
			lightness := 0.65 + 0.1*math.Sin(float64(i+j)*0.5)

			color := oklchToRGB(lightness, chroma, hue)
			prims = append(prims, geometry.NewSphere(core.NewVec3(x, radius, z), radius, color).Primitive())
		}
	}

	return Generated{
		Primitives: prims,
		View: View{
			Center: core.NewVec3(4.5, 6, 18),
			LookAt: core.NewVec3(4.5, 0.8, 4.5),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   40,
		},
	}, nil
}
