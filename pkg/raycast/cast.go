package raycast

import (
	"image"
	"math"
	"time"

	"github.com/df07/go-raytracer-accel/pkg/core"
)

// Target is anything rays can be cast against. It must be safe for
// concurrent queries; scene.Scene is the usual implementation.
type Target interface {
	Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool)
	Occluded(ray core.Ray, maxDistance float64) bool
}

// Options controls a cast
type Options struct {
	Workers  int       // Parallel workers, 0 means one per CPU
	BandRows int       // Image rows per task (default 8)
	Shadows  bool      // Trace one occlusion ray per primary hit
	LightDir core.Vec3 // Direction toward the light for shadow rays
}

// DefaultOptions returns the settings the bench command uses
func DefaultOptions() Options {
	return Options{
		BandRows: 8,
		Shadows:  true,
		LightDir: core.NewVec3(-0.4, 1, 0.3).Normalize(),
	}
}

// Frame holds per-pixel results of a cast. Depth is +Inf for misses.
type Frame struct {
	Width, Height int
	Depth         []float64
	Shadowed      []bool
}

func newFrame(width, height int) *Frame {
	return &Frame{
		Width:    width,
		Height:   height,
		Depth:    make([]float64, width*height),
		Shadowed: make([]bool, width*height),
	}
}

// At returns the depth and shadow flag of pixel (i, j)
func (f *Frame) At(i, j int) (float64, bool) {
	k := j*f.Width + i
	return f.Depth[k], f.Shadowed[k]
}

// Cast traces one primary ray per pixel, plus a shadow ray per hit when
// enabled, spreading bands of rows across a worker pool
func Cast(target Target, camera *Camera, opts Options) (*Frame, BatchStats) {
	start := time.Now()
	if opts.BandRows <= 0 {
		opts.BandRows = 8
	}

	width, height := camera.Size()
	frame := newFrame(width, height)
	numTasks := (height + opts.BandRows - 1) / opts.BandRows

	pool := NewWorkerPool(target, camera, opts, opts.Workers, numTasks)
	pool.Start()

	for task := 0; task < numTasks; task++ {
		y0 := task * opts.BandRows
		pool.SubmitTask(BandTask{
			Bounds: image.Rect(0, y0, width, min(y0+opts.BandRows, height)),
			TaskID: task,
			Frame:  frame,
		})
	}
	pool.Stop()

	var stats BatchStats
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		stats = stats.Add(result.Stats)
	}
	stats.Elapsed = time.Since(start)

	instrumentCast(stats)
	return frame, stats
}

// tracer evaluates pixels for one worker
type tracer struct {
	target Target
	camera *Camera
	opts   Options
}

func (tr *tracer) traceBounds(bounds image.Rectangle, frame *Frame) BatchStats {
	var stats BatchStats
	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			k := j*frame.Width + i
			frame.Depth[k], frame.Shadowed[k] = tr.tracePixel(i, j, &stats)
		}
	}
	return stats
}

func (tr *tracer) tracePixel(i, j int, stats *BatchStats) (float64, bool) {
	ray := tr.camera.PixelRay(i, j)
	stats.PrimaryRays++

	hit, ok := tr.target.Hit(ray, core.RayEpsilon, math.Inf(1))
	if !ok {
		return math.Inf(1), false
	}
	stats.Hits++

	if !tr.opts.Shadows {
		return hit.T, false
	}
	stats.ShadowRays++
	shadow := core.NewRay(hit.Point.Add(hit.Normal.Multiply(core.RayEpsilon)), tr.opts.LightDir)
	blocked := tr.target.Occluded(shadow, math.Inf(1))
	if blocked {
		stats.Shadowed++
	}
	return hit.T, blocked
}
