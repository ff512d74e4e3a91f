package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/df07/go-raytracer-accel/internal/logger"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/scene"
)

const (
	// hitTolerance is the largest t difference accepted between tree and scan
	hitTolerance = 1e-9
	// surfaceTolerance bounds point and normal differences for the same hit
	surfaceTolerance = 1e-6
)

// ErrMismatch is returned when the tree and the brute-force scan disagree
var ErrMismatch = errors.New("tree and brute-force results differ")

type verifyReport struct {
	Rays              int
	Hits              int
	HitMismatches     int
	OccludeMismatches int
}

func (r verifyReport) ok() bool {
	return r.HitMismatches == 0 && r.OccludeMismatches == 0
}

// Verify compares tree queries against a brute-force scan over random rays
// for each named scene, failing on any disagreement.
func Verify(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	failed := 0
	for _, name := range sceneArgs(ctx, scene.Names()...) {
		s, gen, err := loadScene(name, cfg)
		if err != nil {
			return err
		}

		report := verify(s, randomRays(gen.View, cfg.Bench.Verify, cfg.Bench.Seed))
		writeVerifyLine(ctx.App.Writer, name, report)
		if !report.ok() {
			failed++
			logger.Error("verification failed",
				zap.String("scene", name),
				zap.Int("hit_mismatches", report.HitMismatches),
				zap.Int("occlusion_mismatches", report.OccludeMismatches),
			)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d scene(s): %w", failed, ErrMismatch)
	}
	return nil
}

func verify(s *scene.Scene, rays []core.Ray) verifyReport {
	report := verifyReport{Rays: len(rays)}
	for _, ray := range rays {
		rec, hit := s.Hit(ray, core.RayEpsilon, math.Inf(1))
		ref, refHit := s.HitBruteForce(ray, core.RayEpsilon, math.Inf(1))
		if hit {
			report.Hits++
		}
		if hit != refHit || (hit && !sameHit(s, ray, rec, ref)) {
			report.HitMismatches++
		}

		if refHit {
			// Check just past the nearest hit and just short of it
			for _, d := range []float64{ref.T * 1.01, ref.T * 0.99} {
				if s.Occluded(ray, d) != s.OccludedBruteForce(ray, d) {
					report.OccludeMismatches++
				}
			}
			continue
		}
		if s.Occluded(ray, math.Inf(1)) != s.OccludedBruteForce(ray, math.Inf(1)) {
			report.OccludeMismatches++
		}
	}
	return report
}

// sameHit reports whether the tree's record is a nearest hit. At equal t it
// must match the scan's record or, where surfaces coincide, one of the other
// primitives hit at that t.
func sameHit(s *scene.Scene, ray core.Ray, rec, ref core.HitRecord) bool {
	if math.Abs(rec.T-ref.T) > hitTolerance || !rec.Point.ApproxEquals(ref.Point, surfaceTolerance) {
		return false
	}
	if matchesSurface(rec, ref) {
		return true
	}
	for _, tied := range s.HitsAt(ray, ref.T, hitTolerance) {
		if matchesSurface(rec, tied) {
			return true
		}
	}
	return false
}

func matchesSurface(a, b core.HitRecord) bool {
	return a.Material == b.Material && a.Normal.ApproxEquals(b.Normal, surfaceTolerance)
}

func writeVerifyLine(w io.Writer, name string, r verifyReport) {
	status := "ok"
	if !r.ok() {
		status = "FAILED"
	}
	fmt.Fprintf(w, "%-12s %-6s rays=%d hits=%d hit_mismatches=%d occlusion_mismatches=%d\n",
		name, status, r.Rays, r.Hits, r.HitMismatches, r.OccludeMismatches)
}
