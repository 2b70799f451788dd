package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/wegman-software/gurka-go/internal/fixture"
	"github.com/wegman-software/gurka-go/internal/osmfile"
)

// ParsePoint parses a point string in format "lon,lat"
func ParsePoint(s string) (orb.Point, error) {
	if s == "" {
		return orb.Point{}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("point must have 2 values: lon,lat")
	}

	var coords [2]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Point{}, fmt.Errorf("invalid coordinate %q: %w", p, err)
		}
		coords[i] = v
	}

	point := orb.Point{coords[0], coords[1]}
	if point.Lon() < -180 || point.Lon() > 180 {
		return orb.Point{}, fmt.Errorf("lon (%f) must be within [-180, 180]", point.Lon())
	}
	if point.Lat() < -90 || point.Lat() > 90 {
		return orb.Point{}, fmt.Errorf("lat (%f) must be within [-90, 90]", point.Lat())
	}

	return point, nil
}

// Config holds the global configuration for fixture generation
type Config struct {
	// Output settings
	OutputDir    string `yaml:"output_dir"`
	OutputFormat string `yaml:"output_format"` // pbf or xml
	Generator    string `yaml:"generator"`

	// Projection defaults for fixtures that don't set their own
	GridSize float64 `yaml:"gridsize"` // meters per character
	TopLeft  string  `yaml:"top_left"` // lon,lat
	BaseID   int64   `yaml:"base_id"`

	// Tile building
	TileBuilder     string         `yaml:"tile_builder"` // executable, empty skips tile building
	TileBuilderArgs []string       `yaml:"tile_builder_args"`
	TileConfig      map[string]any `yaml:"tile_config"` // dotted path overrides

	// Processing settings
	Concurrency int `yaml:"concurrency"`

	// Logging
	Verbose bool   `yaml:"verbose"`
	LogFile string `yaml:"log_file"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputDir:    "./fixtures",
		OutputFormat: string(osmfile.FormatPBF),
		Generator:    fixture.Generator,
		GridSize:     100,
		Concurrency:  runtime.NumCPU(),
	}
}

// Load reads a YAML configuration file on top of the defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return cfg, nil
}

// Format returns the parsed output format
func (c *Config) Format() (osmfile.Format, error) {
	return osmfile.ParseFormat(c.OutputFormat)
}

// Origin returns the parsed top left coordinate
func (c *Config) Origin() (orb.Point, error) {
	return ParsePoint(c.TopLeft)
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.GridSize <= 0 {
		return fmt.Errorf("gridsize must be positive")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if _, err := c.Format(); err != nil {
		return err
	}
	if _, err := c.Origin(); err != nil {
		return fmt.Errorf("invalid top_left: %w", err)
	}
	return nil
}
