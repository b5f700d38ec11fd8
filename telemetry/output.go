package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/cavernlife/config"
)

// GenerationRecord is the flat CSV form of a cavern generation report.
type GenerationRecord struct {
	Seed             int64  `csv:"seed"`
	Width            int    `csv:"width"`
	Height           int    `csv:"height"`
	FillMode         string `csv:"fill_mode"`
	WallRegions      int    `csv:"wall_regions"`
	FloorRegions     int    `csv:"floor_regions"`
	CulledWalls      int    `csv:"culled_walls"`
	CulledFloors     int    `csv:"culled_floors"`
	Passages         int    `csv:"passages"`
	FloorCells       int    `csv:"floor_cells"`
	WallCells        int    `csv:"wall_cells"`
	WaterCells       int    `csv:"water_cells"`
	UnreachableFloor int    `csv:"unreachable_floor"`
	Placed           int    `csv:"placed"`
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir            string
	telemetryFile  *os.File
	perfFile       *os.File
	bookmarkFile   *os.File
	generationFile *os.File

	// Track if headers have been written
	telemetryHeaderWritten  bool
	perfHeaderWritten       bool
	bookmarkHeaderWritten   bool
	generationHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **os.File
	}{
		{"telemetry.csv", &om.telemetryFile},
		{"perf.csv", &om.perfFile},
		{"bookmarks.csv", &om.bookmarkFile},
		{"generation.csv", &om.generationFile},
	}
	for _, f := range files {
		fh, err := os.Create(filepath.Join(dir, f.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", f.name, err)
		}
		*f.dst = fh
	}

	return om, nil
}

// writeRecords appends records to f, writing the header on first use.
func writeRecords[T any](f *os.File, headerWritten *bool, records []T) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(om.telemetryFile, &om.telemetryHeaderWritten, []WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	records := []PerfStatsCSV{stats.ToCSV(windowEnd)}
	if err := writeRecords(om.perfFile, &om.perfHeaderWritten, records); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(om.bookmarkFile, &om.bookmarkHeaderWritten, []Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteGeneration writes a generation report to generation.csv.
func (om *OutputManager) WriteGeneration(r GenerationRecord) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(om.generationFile, &om.generationHeaderWritten, []GenerationRecord{r}); err != nil {
		return fmt.Errorf("writing generation: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.telemetryFile, om.perfFile, om.bookmarkFile, om.generationFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
