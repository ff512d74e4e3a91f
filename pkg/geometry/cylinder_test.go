package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raytracer-accel/pkg/core"
)

func TestCylinder_Hit(t *testing.T) {
	open := NewCylinder(core.NewVec3(0, 0, 0), 1, 0, 2, false, nil)
	capped := NewCylinder(core.NewVec3(0, 0, 0), 1, 2, 0, true, nil)

	tests := []struct {
		name     string
		cylinder *Cylinder
		ray      core.Ray
		hit      bool
		t        float64
		normal   core.Vec3
		front    bool
	}{
		{
			name:     "side hit",
			cylinder: open,
			ray:      core.NewRay(core.NewVec3(5, 1, 0), core.NewVec3(-1, 0, 0)),
			hit:      true,
			t:        4,
			normal:   core.NewVec3(1, 0, 0),
			front:    true,
		},
		{
			name:     "above the open cylinder",
			cylinder: open,
			ray:      core.NewRay(core.NewVec3(5, 3, 0), core.NewVec3(-1, 0, 0)),
		},
		{
			name:     "down the axis of the open cylinder",
			cylinder: open,
			ray:      core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0)),
		},
		{
			name:     "down the axis hits the top cap",
			cylinder: capped,
			ray:      core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0)),
			hit:      true,
			t:        3,
			normal:   core.NewVec3(0, 1, 0),
			front:    true,
		},
		{
			name:     "up from below hits the bottom cap",
			cylinder: capped,
			ray:      core.NewRay(core.NewVec3(0.5, -1, 0), core.NewVec3(0, 1, 0)),
			hit:      true,
			t:        1,
			normal:   core.NewVec3(0, -1, 0),
			front:    true,
		},
		{
			name:     "open cylinder inner wall",
			cylinder: open,
			ray:      core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0)),
			hit:      true,
			t:        1,
			normal:   core.NewVec3(-1, 0, 0),
			front:    false,
		},
		{
			name:     "oblique through the top cap before the wall",
			cylinder: capped,
			ray:      core.NewRay(core.NewVec3(0, 3, 0), core.NewVec3(0.25, -1, 0)),
			hit:      true,
			t:        1,
			normal:   core.NewVec3(0, 1, 0),
			front:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := tt.cylinder.Hit(tt.ray, 0.001, math.Inf(1))
			require.Equal(t, tt.hit, ok)
			if !ok {
				return
			}
			assert.InDelta(t, tt.t, hit.T, 1e-9)
			assert.True(t, hit.Normal.ApproxEquals(tt.normal, 1e-9), "normal %v", hit.Normal)
			assert.Equal(t, tt.front, hit.FrontFace)
		})
	}
}

func TestCylinder_BoundingBox(t *testing.T) {
	c := NewCylinder(core.NewVec3(1, 100, -1), 2, -1, 3, true, nil)
	b, ok := c.BoundingBox()
	require.True(t, ok)
	assert.True(t, b.Min.ApproxEquals(core.NewVec3(-1, -1, -3), 1e-9))
	assert.True(t, b.Max.ApproxEquals(core.NewVec3(3, 3, 1), 1e-9))

	_, ok = NewCylinder(core.Vec3{}, math.NaN(), 0, 1, false, nil).BoundingBox()
	assert.False(t, ok)
}

func TestDisk_Hit(t *testing.T) {
	disk := NewDisk(core.NewVec3(0, 1, 0), core.NewVec3(0, 2, 0), 1, nil)

	hit, ok := disk.Hit(core.NewRay(core.NewVec3(0.5, 3, 0), core.NewVec3(0, -1, 0)), 0.001, 10)
	require.True(t, ok)
	assert.InDelta(t, 2.0, hit.T, 1e-9)
	assert.True(t, hit.Normal.ApproxEquals(core.NewVec3(0, 1, 0), 1e-9))
	assert.InDelta(t, 0.5, hit.V, 1e-9)
	assert.GreaterOrEqual(t, hit.U, 0.0)
	assert.Less(t, hit.U, 1.0)

	_, ok = disk.Hit(core.NewRay(core.NewVec3(1.5, 3, 0), core.NewVec3(0, -1, 0)), 0.001, 10)
	assert.False(t, ok, "outside the radius")

	_, ok = disk.Hit(core.NewRay(core.NewVec3(-3, 1, 0), core.NewVec3(1, 0, 0)), 0.001, 10)
	assert.False(t, ok, "parallel")
}

func TestDisk_BoundingBoxTight(t *testing.T) {
	disk := NewDisk(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 2, nil)
	b, ok := disk.BoundingBox()
	require.True(t, ok)
	assert.InDelta(t, 2.0, b.Max.X, 1e-9)
	assert.InDelta(t, 2.0, b.Max.Y, 1e-9)
	assert.InDelta(t, core.BoundsEpsilon, b.Max.Z, 1e-12)
}

func TestPlane_Hit(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0), nil)

	hit, ok := plane.Hit(core.NewRay(core.NewVec3(3, 1, 7), core.NewVec3(0, -1, 0)), 0.001, 100)
	require.True(t, ok)
	assert.InDelta(t, 2.0, hit.T, 1e-9)
	assert.True(t, hit.Normal.ApproxEquals(core.NewVec3(0, 1, 0), 1e-9))

	_, ok = plane.Hit(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0)), 0.001, 100)
	assert.False(t, ok, "parallel")

	_, ok = plane.Hit(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0)), 0.001, 100)
	assert.False(t, ok, "pointing away")
}

func TestPlane_BoundingBox(t *testing.T) {
	tests := []struct {
		name   string
		normal core.Vec3
		thin   int // axis with a slab, -1 for none
	}{
		{"x aligned", core.NewVec3(-1, 0, 0), 0},
		{"y aligned", core.NewVec3(0, 1, 0), 1},
		{"z aligned", core.NewVec3(0, 0, 3), 2},
		{"oblique", core.NewVec3(1, 1, 0), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlane(core.NewVec3(2, 3, 4), tt.normal, nil)
			b, ok := p.BoundingBox()
			require.True(t, ok)
			require.True(t, b.IsFinite())
			for axis := 0; axis < 3; axis++ {
				width := b.Max.Axis(axis) - b.Min.Axis(axis)
				if axis == tt.thin {
					assert.InDelta(t, 2*planeSlab, width, 1e-9)
				} else {
					assert.InDelta(t, 2*planeExtent, width, 1e-6)
				}
			}
		})
	}
}
