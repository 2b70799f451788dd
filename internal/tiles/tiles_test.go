package tiles

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/tmp/tiles")

	if cfg.TileDir() != "/tmp/tiles" {
		t.Errorf("expected tile dir /tmp/tiles, got %q", cfg.TileDir())
	}
	if v := cfg.String("mjolnir.concurrency"); v != "1" {
		t.Errorf("expected concurrency 1, got %q", v)
	}
	if v := cfg.String("loki.service_defaults.search_cutoff"); v != "35000" {
		t.Errorf("expected search cutoff 35000, got %q", v)
	}
	if _, ok := cfg.Get("service_limits.truck.max_locations"); !ok {
		t.Error("expected truck service limits")
	}

	// Each call returns an independent tree
	other := DefaultConfig("/other")
	if cfg.TileDir() == other.TileDir() {
		t.Error("expected independent configs")
	}
}

func TestConfigSetGet(t *testing.T) {
	cfg := DefaultConfig("")

	tests := []struct {
		name  string
		path  string
		value any
	}{
		{name: "existing leaf", path: "mjolnir.concurrency", value: 4},
		{name: "new leaf in existing object", path: "mjolnir.timezone", value: "/path/to/timezone.sqlite"},
		{name: "new nested object", path: "additional_data.elevation", value: "/data/elevation"},
		{name: "replace scalar with object", path: "mjolnir.concurrency.value", value: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.Set(tt.path, tt.value)
			got, ok := cfg.Get(tt.path)
			if !ok {
				t.Fatalf("expected %s to be set", tt.path)
			}
			if got != tt.value {
				t.Errorf("expected %v, got %v", tt.value, got)
			}
		})
	}

	if _, ok := cfg.Get("mjolnir.missing.key"); ok {
		t.Error("expected missing path")
	}
	if cfg.String("missing") != "" {
		t.Error("expected empty string for missing path")
	}
}

func TestConfigWriteFile(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	path := filepath.Join(dir, ConfigFileName)

	if err := cfg.WriteFile(path); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Config
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.TileDir() != dir {
		t.Errorf("expected tile dir %s, got %s", dir, decoded.TileDir())
	}
}

func TestCommandBuilder(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	input := filepath.Join(dir, "map.pbf")
	if err := os.WriteFile(input, []byte("pbf"), 0644); err != nil {
		t.Fatal(err)
	}

	script := `test "$1" = --config && test -f "$2" && cp "$3" "$(dirname "$2")/built"`
	builder := &CommandBuilder{Path: sh, Args: []string{"-c", script, "builder"}}

	if err := builder.Build(context.Background(), DefaultConfig(dir), []string{input}); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "built")); err != nil {
		t.Errorf("expected builder to run: %v", err)
	}

	failing := &CommandBuilder{Path: sh, Args: []string{"-c", "exit 3", "builder"}}
	if err := failing.Build(context.Background(), DefaultConfig(dir), []string{input}); err == nil {
		t.Error("expected error from failing builder")
	}
}

func TestBuilderFunc(t *testing.T) {
	var gotInputs []string
	b := BuilderFunc(func(ctx context.Context, cfg Config, inputs []string) error {
		gotInputs = inputs
		return nil
	})

	if err := b.Build(context.Background(), DefaultConfig(""), []string{"a.pbf"}); err != nil {
		t.Fatal(err)
	}
	if len(gotInputs) != 1 || gotInputs[0] != "a.pbf" {
		t.Errorf("unexpected inputs %v", gotInputs)
	}
	if err := (NopBuilder{}).Build(context.Background(), DefaultConfig(""), nil); err != nil {
		t.Errorf("unexpected error from NopBuilder: %v", err)
	}
}
