package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/wegman-software/gurka-go/internal/fixture"
	"github.com/wegman-software/gurka-go/internal/harness"
	"github.com/wegman-software/gurka-go/internal/logger"
	"github.com/wegman-software/gurka-go/internal/tiles"
)

var (
	tileBuilder     string
	tileBuilderArgs []string
	tileSettings    []string
)

var buildCmd = &cobra.Command{
	Use:   "build <fixture.yaml>",
	Short: "Generate a fixture and build routing tiles from it",
	Long: `Recreate <output-dir>/<fixture name>, write map.pbf into it and run the
tile builder with a generated configuration:

  <tile-builder> [args...] --config <dir>/valhalla.json <dir>/map.pbf

Without --tile-builder only the PBF and nothing else is produced.`,
	Args: cobra.ExactArgs(1),
	Run:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&tileBuilder, "tile-builder", "", "Tile builder executable")
	buildCmd.Flags().StringSliceVar(&tileBuilderArgs, "tile-builder-arg", nil, "Extra argument passed to the tile builder (repeatable)")
	buildCmd.Flags().StringArrayVar(&tileSettings, "set", nil, "Tile config override as dotted.path=value (repeatable)")
}

func runBuild(cmd *cobra.Command, args []string) {
	log := logger.Get()

	if cmd.Flags().Changed("tile-builder") {
		cfg.TileBuilder = tileBuilder
	}
	if cmd.Flags().Changed("tile-builder-arg") {
		cfg.TileBuilderArgs = tileBuilderArgs
	}

	overrides := make(map[string]any, len(cfg.TileConfig)+len(tileSettings))
	for k, v := range cfg.TileConfig {
		overrides[k] = v
	}
	for _, s := range tileSettings {
		key, value, ok := strings.Cut(s, "=")
		if !ok {
			exitWithError("invalid --set value, expected dotted.path=value: "+s, nil)
		}
		overrides[key] = value
	}

	doc, err := fixture.LoadFile(args[0])
	if err != nil {
		exitWithError("failed to load fixture", err)
	}
	origin, err := cfg.Origin()
	if err != nil {
		exitWithError("invalid configuration", err)
	}
	var builder tiles.Builder = tiles.NopBuilder{}
	if cfg.TileBuilder != "" {
		builder = &tiles.CommandBuilder{Path: cfg.TileBuilder, Args: cfg.TileBuilderArgs}
	}

	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	workDir := filepath.Join(cfg.OutputDir, name)

	baseID := doc.BaseID
	if baseID == 0 {
		baseID = cfg.BaseID
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m, err := harness.BuildTilesFromLayout(ctx, doc.Layout(cfg.GridSize, origin), harness.Options{
		Ways:            doc.Ways,
		Nodes:           doc.Nodes,
		Relations:       doc.Relations,
		BaseID:          baseID,
		WorkDir:         workDir,
		ConfigOverrides: overrides,
		Builder:         builder,
		Fixture:         &fixture.Builder{Generator: cfg.Generator},
	})
	if err != nil {
		exitWithError("build failed", err)
	}

	log.Info("Fixture ready",
		zap.String("file", m.File),
		zap.String("tile_dir", m.Config.TileDir()),
		zap.Int("nodes", m.Nodes.Len()),
	)
}
