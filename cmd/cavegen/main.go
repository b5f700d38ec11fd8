// Command cavegen generates caverns without running the ecosystem. It prints
// the maps and generation reports, and can inspect single cells.
//
// Usage: go run ./cmd/cavegen -seed 7 -count 4
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/cavernlife/config"
	"github.com/pthm-cable/cavernlife/game"
	"github.com/pthm-cable/cavernlife/inspector"
	"github.com/pthm-cable/cavernlife/systems"
	"github.com/pthm-cable/cavernlife/telemetry"
)

type generated struct {
	seed   int64
	grid   *systems.Grid
	report systems.GenerationReport
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 1, "First seed; batch runs use seed, seed+1, ...")
	count := flag.Int("count", 1, "Number of caverns to generate")
	width := flag.Int("width", 0, "Override world width (0 = use config)")
	height := flag.Int("height", 0, "Override world height (0 = use config)")
	fill := flag.String("fill", "", "Override fill mode: random or simplex")
	ascii := flag.Bool("ascii", true, "Print each map")
	inspect := flag.String("inspect", "", "Describe the cell at x,y of each map")
	outputDir := flag.String("output-dir", "", "Write generation.csv to this directory")
	route := flag.String("path", "", "Plan a route x0,y0,x1,y1 on each map and draw it")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *width > 0 {
		cfg.World.Width = *width
	}
	if *height > 0 {
		cfg.World.Height = *height
	}
	switch *fill {
	case "":
	case "random", "simplex":
		cfg.Cavern.FillMode = *fill
	default:
		fmt.Fprintf(os.Stderr, "unknown -fill %q\n", *fill)
		os.Exit(2)
	}

	var inspectX, inspectY int
	if *inspect != "" {
		if _, err := fmt.Sscanf(*inspect, "%d,%d", &inspectX, &inspectY); err != nil {
			fmt.Fprintf(os.Stderr, "bad -inspect %q: want x,y\n", *inspect)
			os.Exit(2)
		}
	}

	var from, to systems.Point
	if *route != "" {
		if _, err := fmt.Sscanf(*route, "%d,%d,%d,%d", &from.X, &from.Y, &to.X, &to.Y); err != nil {
			fmt.Fprintf(os.Stderr, "bad -path %q: want x0,y0,x1,y1\n", *route)
			os.Exit(2)
		}
	}

	results, err := generateBatch(context.Background(), cfg, *seed, max(1, *count))
	if err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to open output", "error", err)
		os.Exit(1)
	}
	defer om.Close()

	for _, r := range results {
		slog.Info("cavern generated", "report", r.report)
		if err := om.WriteGeneration(game.GenerationRecord(r.report)); err != nil {
			slog.Error("failed to write generation report", "error", err)
		}
		if *route != "" {
			planner := systems.NewPathPlanner(r.grid)
			path := planner.FindPath(from, to)
			if path == nil {
				fmt.Printf("seed %d: no route from %v to %v\n", r.seed, from, to)
			} else {
				fmt.Printf("seed %d: route of %d cells, cost %.2f\n", r.seed, len(path), planner.PathCost(path))
			}
			if *ascii {
				fmt.Printf("seed %d\n%s\n", r.seed, drawPath(r.grid, path))
			}
		} else if *ascii {
			fmt.Printf("seed %d\n%s\n", r.seed, r.grid)
		}
		if *inspect != "" {
			c, err := r.grid.At(inspectX, inspectY)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			title := fmt.Sprintf("seed %d: %s cell (%d, %d)", r.seed, c.Kind, inspectX, inspectY)
			fmt.Println(inspector.Describe(title, inspector.Section{Components: []interface{}{c}}))
		}
	}
}

// generateBatch generates count caverns concurrently, one per seed. The
// first failure cancels the rest.
func generateBatch(ctx context.Context, cfg *config.Config, first int64, count int) ([]generated, error) {
	results := make([]generated, count)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < count; i++ {
		seed := first + int64(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			grid, report, err := systems.NewCavernGenerator(cfg, seed).Generate()
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = generated{seed: seed, grid: grid, report: report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// drawPath renders the map with the route's cells marked '*'.
func drawPath(g *systems.Grid, path []systems.Point) string {
	rows := strings.Split(g.String(), "\n")
	lines := make([][]byte, len(rows))
	for i, r := range rows {
		lines[i] = []byte(r)
	}
	for _, p := range path {
		if p.Y < len(lines) && p.X < len(lines[p.Y]) {
			lines[p.Y][p.X] = '*'
		}
	}
	var b strings.Builder
	for i, l := range lines {
		b.Write(l)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
