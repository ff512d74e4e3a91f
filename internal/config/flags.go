package config

import "github.com/urfave/cli"

// Flag names shared by the commands
const (
	FlagConfig   = "config"
	FlagLeafSize = "leaf-size"
	FlagBins     = "bins"
	FlagScalar   = "scalar"
	FlagWidth    = "width"
	FlagHeight   = "height"
	FlagWorkers  = "workers"
	FlagSeed     = "seed"
	FlagNoShadow = "no-shadows"
	FlagRays     = "rays"
	FlagLogFile  = "log-file"
)

// GlobalFlags are accepted before any command
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  FlagConfig + ", c",
			Usage: "path to config file",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  FlagLogFile,
			Usage: "also write logs to this file, rotated",
		},
	}
}

// BuildFlags control tree construction
func BuildFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  FlagLeafSize,
			Usage: "max primitives per leaf",
		},
		cli.IntFlag{
			Name:  FlagBins,
			Usage: "SAH bins per axis",
		},
		cli.BoolFlag{
			Name:  FlagScalar,
			Usage: "disable the paired-child traversal path",
		},
		cli.Int64Flag{
			Name:  FlagSeed,
			Usage: "seed for procedural scenes and random rays",
		},
	}
}

// CastFlags control ray casting
func CastFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  FlagWidth,
			Usage: "image width",
		},
		cli.IntFlag{
			Name:  FlagHeight,
			Usage: "image height",
		},
		cli.IntFlag{
			Name:  FlagWorkers,
			Usage: "parallel workers, 0 for one per CPU",
		},
		cli.BoolFlag{
			Name:  FlagNoShadow,
			Usage: "skip occlusion rays",
		},
	}
}

// VerifyFlags control the verify command
func VerifyFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  FlagRays,
			Usage: "random rays to compare",
		},
	}
}

// Flags holds command-line overrides. A nil pointer means not set.
type Flags struct {
	LeafSize  *int
	Bins      *int
	Scalar    bool
	Width     *int
	Height    *int
	Workers   *int
	Seed      *int64
	NoShadows bool
	Rays      *int
	Verbose   int // 1 for -v, 2 for -vv
	LogFile   string
}

// FlagsFromContext collects the flags that were set on the command line
func FlagsFromContext(ctx *cli.Context) *Flags {
	f := &Flags{
		Scalar:    ctx.Bool(FlagScalar),
		NoShadows: ctx.Bool(FlagNoShadow),
		LogFile:   ctx.GlobalString(FlagLogFile),
	}
	if ctx.GlobalBool("v") {
		f.Verbose = 1
	}
	if ctx.GlobalBool("vv") {
		f.Verbose = 2
	}

	intFlag := func(name string) *int {
		if !ctx.IsSet(name) {
			return nil
		}
		v := ctx.Int(name)
		return &v
	}
	f.LeafSize = intFlag(FlagLeafSize)
	f.Bins = intFlag(FlagBins)
	f.Width = intFlag(FlagWidth)
	f.Height = intFlag(FlagHeight)
	f.Workers = intFlag(FlagWorkers)
	f.Rays = intFlag(FlagRays)
	if ctx.IsSet(FlagSeed) {
		v := ctx.Int64(FlagSeed)
		f.Seed = &v
	}
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.LeafSize != nil {
		cfg.BVH.LeafSize = *f.LeafSize
	}
	if f.Bins != nil {
		cfg.BVH.Bins = *f.Bins
	}
	if f.Scalar {
		cfg.BVH.WideTraversal = false
	}
	if f.Width != nil {
		cfg.Bench.Width = *f.Width
	}
	if f.Height != nil {
		cfg.Bench.Height = *f.Height
	}
	if f.Workers != nil {
		cfg.Bench.Workers = *f.Workers
	}
	if f.Seed != nil {
		cfg.Bench.Seed = *f.Seed
	}
	if f.NoShadows {
		cfg.Bench.Shadows = false
	}
	if f.Rays != nil {
		cfg.Bench.Verify = *f.Rays
	}
	switch f.Verbose {
	case 1:
		cfg.Logging.Level = "info"
	case 2:
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
