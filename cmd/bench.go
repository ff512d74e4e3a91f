package cmd

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/df07/go-raytracer-accel/internal/config"
	"github.com/df07/go-raytracer-accel/internal/logger"
	"github.com/df07/go-raytracer-accel/pkg/raycast"
	"github.com/df07/go-raytracer-accel/pkg/scene"
)

// Bench builds each named scene and casts one camera ray per pixel
// against it in parallel.
func Bench(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	for _, name := range sceneArgs(ctx, "spheregrid") {
		s, gen, err := loadScene(name, cfg)
		if err != nil {
			return err
		}

		stats, err := bench(s, gen.View, cfg)
		if err != nil {
			return err
		}
		logger.Info("bench finished",
			zap.String("scene", name),
			zap.Int("rays", stats.Rays()),
			zap.Float64("rays_per_sec", stats.RaysPerSecond()),
		)
		writeBenchTable(ctx.App.Writer, name, s, stats)
	}
	return nil
}

func bench(s *scene.Scene, view scene.View, cfg *config.Config) (raycast.BatchStats, error) {
	cam, err := raycast.NewCamera(raycast.CameraConfig{
		Center: view.Center,
		LookAt: view.LookAt,
		Up:     view.Up,
		VFov:   view.VFov,
		Width:  cfg.Bench.Width,
		Height: cfg.Bench.Height,
	})
	if err != nil {
		return raycast.BatchStats{}, err
	}

	_, stats := raycast.Cast(s, cam, cfg.CastOptions())
	return stats, nil
}

func writeBenchTable(w io.Writer, name string, s *scene.Scene, stats raycast.BatchStats) {
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Scene", "Metric", "Value"})
	appendBuildRows(table, name, s)
	table.Append([]string{"", "Primary rays", fmt.Sprint(stats.PrimaryRays)})
	table.Append([]string{"", "Hits", fmt.Sprint(stats.Hits)})
	table.Append([]string{"", "Shadow rays", fmt.Sprint(stats.ShadowRays)})
	table.Append([]string{"", "Shadowed", fmt.Sprint(stats.Shadowed)})
	table.Append([]string{"", "Cast time", stats.Elapsed.String()})
	table.Append([]string{"", "Rays/sec", fmt.Sprintf("%.0f", stats.RaysPerSecond())})
	table.Render()
}

func appendBuildRows(table *tablewriter.Table, name string, s *scene.Scene) {
	st := s.Stats()
	table.Append([]string{name, "Primitives", fmt.Sprint(s.PrimitiveCount())})
	table.Append([]string{"", "Triangles", fmt.Sprint(s.TriangleCount())})
	table.Append([]string{"", "Nodes", fmt.Sprint(st.Nodes)})
	table.Append([]string{"", "Leaves", fmt.Sprint(st.Leaves)})
	table.Append([]string{"", "Max depth", fmt.Sprint(st.MaxDepth)})
	table.Append([]string{"", "Max leaf size", fmt.Sprint(st.MaxLeafSize)})
	table.Append([]string{"", "SAH / median splits", fmt.Sprintf("%d / %d", st.SAHSplits, st.MedianSplits)})
	table.Append([]string{"", "Build time", st.BuildTime.String()})
	table.Append([]string{"", "Wide traversal", fmt.Sprint(s.Wide())})
}
