package bvh

import (
	"errors"
	"fmt"

	"github.com/df07/go-raytracer-accel/pkg/core"
)

const (
	// DefaultLeafSize is the item count at or below which a node becomes a leaf
	DefaultLeafSize = 4

	// DefaultBins is the number of uniform centroid bins the SAH splitter evaluates
	DefaultBins = 16

	// MaxBins bounds the per-build scratch buffers
	MaxBins = 256

	// MaxStackDepth is the fixed traversal stack size. Each level pushes at
	// most two entries and pops one, so a tree of depth d never needs more
	// than d+1 slots.
	MaxStackDepth = 64

	// maxBuildDepth forces a leaf before traversal could overflow its stack
	maxBuildDepth = MaxStackDepth - 4
)

var (
	// ErrUnbounded is returned by Build when an item cannot report finite bounds
	ErrUnbounded = errors.New("bvh: item has no finite bounds")

	// ErrInvalidOptions is returned by Build for out-of-range options
	ErrInvalidOptions = errors.New("bvh: invalid options")
)

// Item is anything the tree can partition and query. Implementations must
// be safe for concurrent read-only use.
type Item interface {
	Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool)
	Occludes(ray core.Ray, tMin, tMax float64) bool
	TryGetBounds() (core.AABB, core.Vec3, bool)
}

// Options controls tree construction. Zero values select defaults.
type Options struct {
	LeafSize      int  // Max items per leaf (default 4)
	Bins          int  // SAH bins per axis (default 16)
	WideTraversal bool // Test both children together when the CPU allows it
}

// DefaultOptions returns the canonical build settings
func DefaultOptions() Options {
	return Options{
		LeafSize:      DefaultLeafSize,
		Bins:          DefaultBins,
		WideTraversal: true,
	}
}

func (o Options) withDefaults() (Options, error) {
	if o.LeafSize == 0 {
		o.LeafSize = DefaultLeafSize
	}
	if o.Bins == 0 {
		o.Bins = DefaultBins
	}
	if o.LeafSize < 1 {
		return o, fmt.Errorf("%w: leaf size %d", ErrInvalidOptions, o.LeafSize)
	}
	if o.Bins < 2 || o.Bins > MaxBins {
		return o, fmt.Errorf("%w: bins %d outside [2,%d]", ErrInvalidOptions, o.Bins, MaxBins)
	}
	return o, nil
}
