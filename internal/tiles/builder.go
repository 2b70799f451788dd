package tiles

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/wegman-software/gurka-go/internal/logger"
)

// ConfigFileName is the name of the configuration file written into the tile directory
const ConfigFileName = "valhalla.json"

// Builder builds a tile set from OSM input files
type Builder interface {
	Build(ctx context.Context, cfg Config, inputs []string) error
}

// BuilderFunc adapts a function to the Builder interface
type BuilderFunc func(ctx context.Context, cfg Config, inputs []string) error

func (f BuilderFunc) Build(ctx context.Context, cfg Config, inputs []string) error {
	return f(ctx, cfg, inputs)
}

// NopBuilder skips tile building
type NopBuilder struct{}

func (NopBuilder) Build(ctx context.Context, cfg Config, inputs []string) error {
	logger.Get().Debug("Skipping tile build", zap.Strings("inputs", inputs))
	return nil
}

// CommandBuilder runs an external tile builder executable as
//
//	<Path> [Args...] --config <tile_dir>/valhalla.json <inputs...>
type CommandBuilder struct {
	Path string
	Args []string
}

// Build writes cfg into the tile directory and runs the executable
func (b *CommandBuilder) Build(ctx context.Context, cfg Config, inputs []string) error {
	log := logger.Get()

	configPath := filepath.Join(cfg.TileDir(), ConfigFileName)
	if err := cfg.WriteFile(configPath); err != nil {
		return err
	}

	args := append([]string{}, b.Args...)
	args = append(args, "--config", configPath)
	args = append(args, inputs...)

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, b.Path, args...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	log.Info("Building tiles",
		zap.String("builder", b.Path),
		zap.String("tile_dir", cfg.TileDir()),
		zap.Strings("inputs", inputs),
	)
	start := time.Now()

	if err := cmd.Run(); err != nil {
		log.Debug("Tile builder output", zap.String("output", output.String()))
		return fmt.Errorf("tile builder %s failed: %w", b.Path, err)
	}

	log.Info("Tiles built", zap.Duration("duration", time.Since(start).Round(time.Millisecond)))
	return nil
}
