package cmd

import (
	"os"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/wegman-software/gurka-go/internal/config"
	"github.com/wegman-software/gurka-go/internal/logger"
)

var (
	cfg        = config.DefaultConfig()
	configFile string
	flagCfg    = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "gurka",
	Short: "Generate OSM test fixtures from ASCII maps",
	Long: `gurka turns ASCII drawn road networks into OSM files for end to end tests.

A fixture file describes the drawing plus the ways, node tags and relations
laid on top of it:

  gridsize: 100
  map: |
    A----B----C
         |
         D
  ways:
    ABC: {highway: primary}
    BD: {highway: residential}

Every letter or digit becomes a node, one character is one grid cell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			loaded, err := config.Load(configFile)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		applyFlags(cmd)

		if cfg.LogFile != "" {
			logger.InitWithFile(cfg.Verbose, cfg.LogFile)
		} else {
			logger.Init(cfg.Verbose)
		}

		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&flagCfg.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagCfg.LogFile, "log-file", "", "Path to log file for persistent logging (JSON format)")
	rootCmd.PersistentFlags().StringVarP(&flagCfg.OutputDir, "output-dir", "o", flagCfg.OutputDir, "Directory for generated files")
	rootCmd.PersistentFlags().IntVarP(&flagCfg.Concurrency, "workers", "j", flagCfg.Concurrency, "Number of fixtures generated in parallel")

	// Generation flags
	rootCmd.PersistentFlags().StringVarP(&flagCfg.OutputFormat, "format", "f", flagCfg.OutputFormat, "Output format: pbf or xml")
	rootCmd.PersistentFlags().StringVar(&flagCfg.Generator, "generator", flagCfg.Generator, "Writing program recorded in the output")
	rootCmd.PersistentFlags().Float64VarP(&flagCfg.GridSize, "gridsize", "g", flagCfg.GridSize, "Default grid cell size in meters")
	rootCmd.PersistentFlags().StringVar(&flagCfg.TopLeft, "top-left", "", "Default top left coordinate: lon,lat")
	rootCmd.PersistentFlags().Int64Var(&flagCfg.BaseID, "base-id", 0, "Default first entity id")
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) || configFile == "" {
			apply()
		}
	}

	set("verbose", func() { cfg.Verbose = flagCfg.Verbose })
	set("log-file", func() { cfg.LogFile = flagCfg.LogFile })
	set("output-dir", func() { cfg.OutputDir = flagCfg.OutputDir })
	set("workers", func() { cfg.Concurrency = flagCfg.Concurrency })
	set("format", func() { cfg.OutputFormat = flagCfg.OutputFormat })
	set("generator", func() { cfg.Generator = flagCfg.Generator })
	set("gridsize", func() { cfg.GridSize = flagCfg.GridSize })
	set("top-left", func() { cfg.TopLeft = flagCfg.TopLeft })
	set("base-id", func() { cfg.BaseID = flagCfg.BaseID })
}

func exitWithError(msg string, err error) {
	log := logger.Get()
	if err != nil {
		log.Error(msg, zap.Error(err))
	} else {
		log.Error(msg)
	}
	logger.Sync()
	os.Exit(1)
}
