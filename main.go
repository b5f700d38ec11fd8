package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/cavernlife/config"
	"github.com/pthm-cable/cavernlife/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in steps (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N steps (0 = unlimited)")
	workers := flag.Int("workers", -1, "Worker goroutines (0 = GOMAXPROCS, -1 = use config)")
	realtime := flag.Bool("realtime", false, "Feed wall-clock time to the clock instead of running flat out")
	printEvery := flag.Int("print-every", 0, "Print the map every N steps (0 = never)")
	overlay := flag.String("overlay", "none", "Map overlay: none, algae, humidity, temperature")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg().Clone()
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if *workers >= 0 {
		cfg.Parallel.Workers = *workers
	}

	mapOverlay, err := game.ParseOverlay(*overlay)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	sim, err := game.New(game.Options{
		Config:    cfg,
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to start simulation", "seed", rngSeed, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := sim.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"max_ticks", *maxTicks,
		"realtime", *realtime,
		"workers", cfg.Parallel.Workers,
	)

	render := game.RenderOptions{Overlay: mapOverlay, Entities: true}
	last := time.Now()
	for {
		elapsed := cfg.Derived.RealStep
		if *realtime {
			time.Sleep(cfg.Derived.RealStep / 4)
			now := time.Now()
			elapsed = now.Sub(last)
			last = now
		}
		if !sim.Tick(elapsed) {
			continue
		}

		tick := int(sim.Ticks())
		if *printEvery > 0 && tick%*printEvery == 0 {
			fmt.Printf("tick %d, %s\n%s", tick, sim.WorldTime(), sim.Render(render))
		}
		if *maxTicks > 0 && tick >= *maxTicks {
			slog.Info("max ticks reached", "tick", tick, "world_time", sim.WorldTime().String())
			return
		}
	}
}
