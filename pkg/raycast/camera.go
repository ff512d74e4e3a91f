package raycast

import (
	"fmt"
	"math"

	"github.com/df07/go-raytracer-accel/pkg/core"
)

// CameraConfig describes a pinhole camera and the image it covers
type CameraConfig struct {
	Center core.Vec3 // Camera position
	LookAt core.Vec3 // Point the camera looks at
	Up     core.Vec3 // Up direction, need not be orthogonal to the view
	VFov   float64   // Vertical field of view in degrees
	Width  int       // Image width in pixels
	Height int       // Image height in pixels
}

// Camera generates primary rays for an image
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	width, height   int
}

// NewCamera creates a pinhole camera from the config
func NewCamera(cfg CameraConfig) (*Camera, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("camera: invalid image size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.VFov <= 0 || cfg.VFov >= 180 {
		return nil, fmt.Errorf("camera: vertical fov %v outside (0,180)", cfg.VFov)
	}

	forward := cfg.LookAt.Subtract(cfg.Center)
	if forward.Length() == 0 {
		return nil, fmt.Errorf("camera: center and look-at coincide")
	}
	w := forward.Multiply(-1).Normalize()
	u := cfg.Up.Cross(w)
	if u.Length() < 1e-12 {
		return nil, fmt.Errorf("camera: up is parallel to the view direction")
	}
	u = u.Normalize()
	v := w.Cross(u)

	aspectRatio := float64(cfg.Width) / float64(cfg.Height)
	viewportHeight := 2.0 * math.Tan(cfg.VFov*math.Pi/360.0)
	viewportWidth := aspectRatio * viewportHeight

	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(viewportHeight)
	lowerLeftCorner := cfg.Center.Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w)

	return &Camera{
		origin:          cfg.Center,
		horizontal:      horizontal,
		vertical:        vertical,
		lowerLeftCorner: lowerLeftCorner,
		width:           cfg.Width,
		height:          cfg.Height,
	}, nil
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1
func (c *Camera) GetRay(s, t float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)

	return core.NewRay(c.origin, direction)
}

// PixelRay returns the ray through the center of pixel (i, j). Row 0 is
// the top of the image.
func (c *Camera) PixelRay(i, j int) core.Ray {
	s := (float64(i) + 0.5) / float64(c.width)
	t := 1 - (float64(j)+0.5)/float64(c.height)
	return c.GetRay(s, t)
}

// Size returns the image size in pixels
func (c *Camera) Size() (width, height int) {
	return c.width, c.height
}
