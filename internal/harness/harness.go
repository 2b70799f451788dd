// Package harness prepares end to end routing fixtures: it draws the map,
// writes it as a PBF into a fresh work directory and builds tiles from it.
package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/wegman-software/gurka-go/internal/fixture"
	"github.com/wegman-software/gurka-go/internal/grid"
	"github.com/wegman-software/gurka-go/internal/logger"
	"github.com/wegman-software/gurka-go/internal/tiles"
)

// MapFileName is the name of the generated OSM file inside the work directory
const MapFileName = "map.pbf"

// ErrRootWorkDir is returned when the work directory is the filesystem root,
// which would be cleaned out before generation
var ErrRootWorkDir = errors.New("can't use / as work directory, it is cleaned out first")

// Map is a generated fixture ready for routing
type Map struct {
	Config tiles.Config
	Nodes  *grid.Layout
	// File is the path of the generated OSM file
	File string
}

// Waypoints resolves drawn node names to coordinates
func (m *Map) Waypoints(names ...string) ([]orb.Point, error) {
	return m.Nodes.Locations(names...)
}

// Options describe the fixture content and how to build it
type Options struct {
	Ways      []fixture.Way
	Nodes     []fixture.NodeTags
	Relations []fixture.Relation
	BaseID    int64

	// WorkDir is removed and recreated before generation
	WorkDir string
	// ConfigOverrides are applied to the tile config by dotted path
	ConfigOverrides map[string]any
	// Builder builds tiles from the generated file, defaults to tiles.NopBuilder
	Builder tiles.Builder
	// Fixture writes the OSM file, defaults to a zero fixture.Builder
	Fixture *fixture.Builder
}

// BuildTiles projects asciiMap with the given cell size in meters and builds tiles for it
func BuildTiles(ctx context.Context, asciiMap string, gridSize float64, opts Options) (*Map, error) {
	return BuildTilesFromLayout(ctx, grid.Project(asciiMap, gridSize, orb.Point{}), opts)
}

// BuildTilesFromLayout builds tiles for an already projected layout
func BuildTilesFromLayout(ctx context.Context, layout *grid.Layout, opts Options) (*Map, error) {
	log := logger.Get()

	workDir := filepath.Clean(opts.WorkDir)
	if opts.WorkDir == "" {
		return nil, fmt.Errorf("work directory is required")
	}
	if workDir == string(filepath.Separator) {
		return nil, ErrRootWorkDir
	}

	cfg := tiles.DefaultConfig(workDir)
	for path, value := range opts.ConfigOverrides {
		cfg.Set(path, value)
	}

	if err := resetDir(workDir); err != nil {
		return nil, err
	}

	mapFile := filepath.Join(workDir, MapFileName)
	log.Info("Generating map PBF", zap.String("path", mapFile))

	builder := opts.Fixture
	if builder == nil {
		builder = &fixture.Builder{}
	}
	if err := builder.Build(layout, opts.Ways, opts.Nodes, opts.Relations, mapFile, opts.BaseID); err != nil {
		return nil, err
	}

	tileBuilder := opts.Builder
	if tileBuilder == nil {
		tileBuilder = tiles.NopBuilder{}
	}

	log.Info("Building tiles", zap.String("tile_dir", cfg.TileDir()))
	start := time.Now()
	if err := tileBuilder.Build(ctx, cfg, []string{mapFile}); err != nil {
		return nil, fmt.Errorf("failed to build tiles: %w", err)
	}
	log.Debug("Tile build finished", zap.Duration("duration", time.Since(start).Round(time.Millisecond)))

	return &Map{Config: cfg, Nodes: layout, File: mapFile}, nil
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clean work directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	return nil
}
