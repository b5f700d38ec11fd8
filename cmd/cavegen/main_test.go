package main

import (
	"context"
	"errors"
	"testing"

	"github.com/pthm-cable/cavernlife/config"
	"github.com/pthm-cable/cavernlife/systems"
)

func TestGenerateBatch(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.World.Width, cfg.World.Height = 48, 32

	results, err := generateBatch(context.Background(), cfg, 10, 4)
	if err != nil {
		t.Fatalf("generateBatch: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for i, r := range results {
		if r.seed != int64(10+i) {
			t.Errorf("result %d seed = %d, want %d", i, r.seed, 10+i)
		}
		if r.report.UnreachableFloor != 0 {
			t.Errorf("seed %d: %d unreachable floor cells", r.seed, r.report.UnreachableFloor)
		}
		if r.grid.Width() != 48 || r.grid.Height() != 32 {
			t.Errorf("seed %d: grid %dx%d, want 48x32", r.seed, r.grid.Width(), r.grid.Height())
		}
	}
}

func TestGenerateBatchSolidRock(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.World.Width, cfg.World.Height = 24, 16
	cfg.Cavern.WallFillPct = 100
	cfg.Cavern.WaterFillPct = 0

	results, err := generateBatch(context.Background(), cfg, 1, 3)
	if err != nil {
		t.Fatalf("generateBatch: %v", err)
	}
	for _, r := range results {
		if r.report.FloorCells != 0 || r.report.Passages != 0 {
			t.Errorf("seed %d: %d floor cells, %d passages in solid rock", r.seed, r.report.FloorCells, r.report.Passages)
		}
	}
}

func TestGenerateBatchCancelled(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := generateBatch(ctx, cfg, 1, 3); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDrawPath(t *testing.T) {
	g := systems.NewGrid(4, 2, 21)
	path := []systems.Point{{0, 0}, {1, 1}, {2, 1}}

	got := drawPath(g, path)
	want := "*...\n.**.\n"
	if got != want {
		t.Errorf("drawPath = %q, want %q", got, want)
	}
}
