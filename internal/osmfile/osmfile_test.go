package osmfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

func sample() *osm.OSM {
	return &osm.OSM{
		Nodes: osm.Nodes{
			{ID: 1, Lat: 0, Lon: 0, Version: 1, Visible: true},
			{ID: 2, Lat: 0, Lon: 0.001, Version: 1, Visible: true},
		},
		Ways: osm.Ways{
			{ID: 3, Version: 1, Visible: true, Nodes: osm.WayNodes{{ID: 1}, {ID: 2}}, Tags: osm.Tags{{Key: "name", Value: "AB"}}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatPBF},
		{input: "PBF", want: FormatPBF},
		{input: "xml", want: FormatXML},
		{input: "osm", want: FormatXML},
		{input: "geojson", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: expected %s, got %s (%v)", tt.input, tt.want, got, err)
		}
	}

	if FormatForPath("map.osm") != FormatXML || FormatForPath("map.osm.pbf") != FormatPBF {
		t.Error("unexpected format detection")
	}
}

func TestWriteReadFile(t *testing.T) {
	bound := orb.Bound{Max: orb.Point{0.001, 0}}

	for _, name := range []string{"map.pbf", "map.osm"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			opts := WriteOptions{Format: FormatForPath(path), Generator: "test", Bound: &bound}

			if err := WriteFile(path, sample(), opts); err != nil {
				t.Fatalf("write failed: %v", err)
			}
			data, err := ReadFile(context.Background(), path)
			if err != nil {
				t.Fatalf("read failed: %v", err)
			}
			if len(data.Nodes) != 2 || len(data.Ways) != 1 {
				t.Fatalf("expected 2 nodes and 1 way, got %d and %d", len(data.Nodes), len(data.Ways))
			}
			if data.Ways[0].Tags.Find("name") != "AB" {
				t.Errorf("unexpected way tags %v", data.Ways[0].Tags)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if info.Mode().Perm() != 0644 {
				t.Errorf("expected mode 0644, got %v", info.Mode().Perm())
			}
		})
	}
}

func TestWriteFileFailureRemovesTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.pbf")

	if err := WriteFile(path, sample(), WriteOptions{Format: "geojson"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files left behind, found %d", len(entries))
	}
}
