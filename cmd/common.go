// Package cmd implements the command-line actions.
package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/df07/go-raytracer-accel/internal/config"
	"github.com/df07/go-raytracer-accel/internal/logger"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/scene"
)

// ScenesDir is searched for scene files given by bare name
const ScenesDir = "scenes"

// setup loads the config and initializes logging for a command
func setup(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.GlobalString(config.FlagConfig), config.FlagsFromContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	logger.Debug("config loaded",
		zap.Int("leaf_size", cfg.BVH.LeafSize),
		zap.Int("bins", cfg.BVH.Bins),
		zap.Bool("wide", cfg.BVH.WideTraversal),
	)
	return cfg, nil
}

// sceneArgs returns the scene names given on the command line, or def
func sceneArgs(ctx *cli.Context, def ...string) []string {
	if ctx.NArg() == 0 {
		return def
	}
	return []string(ctx.Args())
}

// loadScene resolves name to a generator, a scene file path, or a file in
// ScenesDir, and builds its tree
func loadScene(name string, cfg *config.Config) (*scene.Scene, scene.Generated, error) {
	if name == "" {
		return nil, scene.Generated{}, fmt.Errorf("empty scene name")
	}

	gen, err := generate(name, cfg)
	if err != nil {
		return nil, scene.Generated{}, err
	}

	s, err := scene.Build(name, gen.Primitives, cfg.BVHOptions(), logger.Named("scene"))
	if err != nil {
		return nil, scene.Generated{}, err
	}
	return s, gen, nil
}

func generate(name string, cfg *config.Config) (scene.Generated, error) {
	if path, ok := sceneFile(name); ok {
		d, err := scene.LoadDescription(path)
		if err != nil {
			return scene.Generated{}, err
		}
		return d.Generated(filepath.Dir(path), cfg.BVHOptions())
	}
	return scene.Generate(name, cfg.Bench.Seed, cfg.BVHOptions())
}

// sceneFile reports whether name refers to a scene description on disk
func sceneFile(name string) (string, bool) {
	name = strings.TrimPrefix(name, "file:")
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".yaml" || ext == ".yml" {
		return name, true
	}
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(ScenesDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// randomRays mixes rays aimed through the view with rays in random
// directions from near the look-at point
func randomRays(view scene.View, n int, seed int64) []core.Ray {
	random := rand.New(rand.NewSource(seed))
	jitter := func(scale float64) core.Vec3 {
		return core.NewVec3(random.NormFloat64(), random.NormFloat64(), random.NormFloat64()).Multiply(scale)
	}
	spread := view.LookAt.Subtract(view.Center).Length()

	rays := make([]core.Ray, n)
	for i := range rays {
		if i%2 == 0 {
			origin := view.Center.Add(jitter(0.1 * spread))
			target := view.LookAt.Add(jitter(0.5 * spread))
			rays[i] = core.NewRay(origin, target.Subtract(origin))
			continue
		}
		rays[i] = core.NewRay(view.LookAt.Add(jitter(0.5*spread)), jitter(1))
	}
	return rays
}
