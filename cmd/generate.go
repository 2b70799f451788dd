package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spf13/cobra"
	"github.com/wegman-software/gurka-go/internal/fixture"
	"github.com/wegman-software/gurka-go/internal/logger"
	"github.com/wegman-software/gurka-go/internal/osmfile"
)

var generateCmd = &cobra.Command{
	Use:   "generate <fixture.yaml>...",
	Short: "Generate OSM files from fixture files",
	Long: `Project each fixture's ASCII map and write its nodes, ways and relations
to <output-dir>/<fixture name>.pbf (or .osm with --format xml).

Only nodes referenced by a way, a node tag or a relation member are written.
Fixtures are independent and generated in parallel, each into its own file.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	log := logger.Get()

	format, err := cfg.Format()
	if err != nil {
		exitWithError("invalid configuration", err)
	}
	origin, err := cfg.Origin()
	if err != nil {
		exitWithError("invalid configuration", err)
	}
	if err := ensureDir(cfg.OutputDir); err != nil {
		exitWithError("failed to create output directory", err)
	}

	log.Info("Generating fixtures",
		zap.Int("fixtures", len(args)),
		zap.String("output", cfg.OutputDir),
		zap.String("format", string(format)),
		zap.Int("workers", cfg.Concurrency),
	)
	start := time.Now()

	builder := &fixture.Builder{Generator: cfg.Generator, Format: format}

	var g errgroup.Group
	g.SetLimit(cfg.Concurrency)
	for _, path := range args {
		g.Go(func() error {
			doc, err := fixture.LoadFile(path)
			if err != nil {
				return err
			}

			out := outputPath(path, format)
			layout := doc.Layout(cfg.GridSize, origin)
			baseID := doc.BaseID
			if baseID == 0 {
				baseID = cfg.BaseID
			}

			if err := builder.Build(layout, doc.Ways, doc.Nodes, doc.Relations, out, baseID); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			log.Info("Fixture written",
				zap.String("fixture", path),
				zap.String("output", out),
				zap.Int("grid_nodes", layout.Len()),
				zap.Int("ways", len(doc.Ways)),
				zap.Int("relations", len(doc.Relations)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		exitWithError("generation failed", err)
	}

	log.Info("Generation complete", zap.Duration("duration", time.Since(start).Round(time.Millisecond)))
}

// outputPath names the output after the fixture file
func outputPath(fixturePath string, format osmfile.Format) string {
	name := strings.TrimSuffix(filepath.Base(fixturePath), filepath.Ext(fixturePath))
	ext := ".pbf"
	if format == osmfile.FormatXML {
		ext = ".osm"
	}
	return filepath.Join(cfg.OutputDir, name+ext)
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
