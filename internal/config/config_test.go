package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLon float64
		wantLat float64
		wantErr bool
	}{
		{name: "empty is origin", input: ""},
		{name: "berlin", input: "13.4, 52.5", wantLon: 13.4, wantLat: 52.5},
		{name: "negative", input: "-74.006,40.7128", wantLon: -74.006, wantLat: 40.7128},
		{name: "one value", input: "13.4", wantErr: true},
		{name: "not a number", input: "a,b", wantErr: true},
		{name: "lat out of range", input: "0,91", wantErr: true},
		{name: "lon out of range", input: "181,0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePoint(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Lon() != tt.wantLon || p.Lat() != tt.wantLat {
				t.Errorf("expected %v,%v got %v", tt.wantLon, tt.wantLat, p)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "xml output", modify: func(c *Config) { c.OutputFormat = "xml" }},
		{name: "unknown format", modify: func(c *Config) { c.OutputFormat = "geojson" }, wantErr: true},
		{name: "zero gridsize", modify: func(c *Config) { c.GridSize = 0 }, wantErr: true},
		{name: "no output dir", modify: func(c *Config) { c.OutputDir = "" }, wantErr: true},
		{name: "no concurrency", modify: func(c *Config) { c.Concurrency = 0 }, wantErr: true},
		{name: "bad top left", modify: func(c *Config) { c.TopLeft = "1" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gurka.yaml")
	content := `output_dir: /tmp/out
gridsize: 10
top_left: "5.1,52.1"
tile_builder: valhalla_build_tiles
tile_config:
  mjolnir.timezone: /data/tz.sqlite
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OutputDir != "/tmp/out" || cfg.GridSize != 10 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Generator != "valhalla-test-creator" {
		t.Errorf("expected default generator to survive, got %q", cfg.Generator)
	}
	if cfg.TileConfig["mjolnir.timezone"] != "/data/tz.sqlite" {
		t.Errorf("unexpected tile config %v", cfg.TileConfig)
	}
	origin, err := cfg.Origin()
	if err != nil || origin.Lon() != 5.1 {
		t.Errorf("unexpected origin %v (%v)", origin, err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
