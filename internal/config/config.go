// Package config handles loading and validating tool settings.
package config

import (
	"errors"
	"fmt"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/raycast"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("config: invalid")

// Config holds all settings.
type Config struct {
	BVH     BVHConfig     `yaml:"bvh"`
	Bench   BenchConfig   `yaml:"bench"`
	Logging LoggingConfig `yaml:"logging"`
}

// BVHConfig holds tree build settings.
type BVHConfig struct {
	LeafSize      int  `yaml:"leaf_size"`
	Bins          int  `yaml:"bins"`
	WideTraversal bool `yaml:"wide_traversal"`
}

// BenchConfig holds ray casting settings.
type BenchConfig struct {
	Width   int   `yaml:"width"`
	Height  int   `yaml:"height"`
	Workers int   `yaml:"workers"` // 0 means one per CPU
	Seed    int64 `yaml:"seed"`
	Shadows bool  `yaml:"shadows"`
	Verify  int   `yaml:"verify"` // Random rays the verify command checks
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		BVH: BVHConfig{
			LeafSize:      bvh.DefaultLeafSize,
			Bins:          bvh.DefaultBins,
			WideTraversal: true,
		},
		Bench: BenchConfig{
			Width:   640,
			Height:  360,
			Workers: 0,
			Seed:    1,
			Shadows: true,
			Verify:  10000,
		},
		Logging: LoggingConfig{
			Level:   "warn",
			LogFile: "",
		},
	}
}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.BVH.LeafSize < 1 {
		errs = append(errs, fmt.Errorf("bvh.leaf_size %d must be at least 1", c.BVH.LeafSize))
	}
	if c.BVH.Bins < 2 || c.BVH.Bins > bvh.MaxBins {
		errs = append(errs, fmt.Errorf("bvh.bins %d outside [2,%d]", c.BVH.Bins, bvh.MaxBins))
	}
	if c.Bench.Width < 1 || c.Bench.Height < 1 {
		errs = append(errs, fmt.Errorf("bench size %dx%d must be positive", c.Bench.Width, c.Bench.Height))
	}
	if c.Bench.Workers < 0 {
		errs = append(errs, fmt.Errorf("bench.workers %d must not be negative", c.Bench.Workers))
	}
	if c.Bench.Verify < 0 {
		errs = append(errs, fmt.Errorf("bench.verify %d must not be negative", c.Bench.Verify))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not debug, info, warn or error", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// BVHOptions converts the bvh section into build options.
func (c *Config) BVHOptions() bvh.Options {
	return bvh.Options{
		LeafSize:      c.BVH.LeafSize,
		Bins:          c.BVH.Bins,
		WideTraversal: c.BVH.WideTraversal,
	}
}

// CastOptions converts the bench section into ray casting options.
func (c *Config) CastOptions() raycast.Options {
	opts := raycast.DefaultOptions()
	opts.Workers = c.Bench.Workers
	opts.Shadows = c.Bench.Shadows
	return opts
}
