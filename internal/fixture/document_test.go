package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/wegman-software/gurka-go/internal/grid"
)

const restrictionDoc = `
name: no right turn
gridsize: 50
top_left: [5.1, 52.1]
base_id: 1000
map: |
  A----B----C
       |
       D
ways:
  ABC: {highway: primary, oneway: "yes"}
  BD:
    highway: residential
    maxspeed: 30
  CB:
nodes:
  B: {highway: traffic_signals}
relations:
  - members:
      - {type: way, ref: ABC, role: from}
      - {type: node, ref: B, role: via}
      - {type: way, ref: BD, role: to}
    tags:
      type: restriction
      restriction: no_right_turn
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(restrictionDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Name != "no right turn" || doc.GridSize != 50 || doc.BaseID != 1000 {
		t.Errorf("unexpected header fields %+v", doc)
	}
	if doc.TopLeft.Lon() != 5.1 || doc.TopLeft.Lat() != 52.1 {
		t.Errorf("unexpected top left %v", doc.TopLeft)
	}

	if len(doc.Ways) != 3 {
		t.Fatalf("expected 3 ways, got %d", len(doc.Ways))
	}
	wantOrder := []string{"ABC", "BD", "CB"}
	for i, w := range doc.Ways {
		if w.Nodes != wantOrder[i] {
			t.Errorf("way %d: expected %s, got %s", i, wantOrder[i], w.Nodes)
		}
	}
	if len(doc.Ways[0].Tags) != 2 || doc.Ways[0].Tags[0].Key != "highway" || doc.Ways[0].Tags[1].Value != "yes" {
		t.Errorf("unexpected tags for ABC: %v", doc.Ways[0].Tags)
	}
	if doc.Ways[1].Tags.Find("maxspeed") != "30" {
		t.Errorf("expected maxspeed 30, got %v", doc.Ways[1].Tags)
	}
	if len(doc.Ways[2].Tags) != 0 {
		t.Errorf("expected no tags for CB, got %v", doc.Ways[2].Tags)
	}

	if len(doc.Nodes) != 1 || doc.Nodes[0].Node != "B" {
		t.Errorf("unexpected nodes %v", doc.Nodes)
	}

	if len(doc.Relations) != 1 {
		t.Fatalf("expected 1 relation, got %d", len(doc.Relations))
	}
	rel := doc.Relations[0]
	if len(rel.Members) != 3 || rel.Members[1].Type != MemberNode || rel.Members[2].Role != "to" {
		t.Errorf("unexpected members %+v", rel.Members)
	}
	if rel.Tags[0].Key != "type" || rel.Tags[1].Value != "no_right_turn" {
		t.Errorf("unexpected relation tags %v", rel.Tags)
	}

	layout := doc.Layout(100, orb.Point{})
	if layout.Len() != 4 {
		t.Errorf("expected 4 nodes, got %d", layout.Len())
	}
	a, _ := layout.Location("A")
	if a != doc.TopLeft {
		t.Errorf("expected A at top left, got %v", a)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantText string
	}{
		{name: "unknown member type", input: "relations:\n  - members:\n      - {type: area, ref: AB}\n", wantText: "unknown member type"},
		{name: "ways not a mapping", input: "ways: [AB, BC]\n", wantText: "expected a mapping"},
		{name: "nested tag value", input: "ways:\n  AB: {highway: [a, b]}\n", wantText: "scalar value"},
		{name: "bad top left", input: "top_left: [1]\n", wantText: "top_left"},
		{name: "unknown field", input: "grid_size: 10\n", wantText: "grid_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("expected error containing %q, got %v", tt.wantText, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	if err := os.WriteFile(path, []byte(restrictionDoc), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Ways) != 3 {
		t.Errorf("expected 3 ways, got %d", len(doc.Ways))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDocumentBuild(t *testing.T) {
	doc, err := Parse([]byte(restrictionDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := Assemble(doc.Layout(100, orb.Point{}), doc.Ways, doc.Nodes, doc.Relations, doc.BaseID, fixedTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Relations[0].ID != 1007 {
		t.Errorf("expected relation id 1007, got %d", data.Relations[0].ID)
	}
}

func TestDocumentLayoutDefaults(t *testing.T) {
	doc, err := Parse([]byte("map: A--B\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	origin := orb.Point{2, 3}
	layout := doc.Layout(10, origin)
	a, _ := layout.Location("A")
	if a != origin {
		t.Errorf("expected A at %v, got %v", origin, a)
	}
	b, _ := layout.Location("B")
	want := orb.Point{2 + 3*grid.DegreesPerCell(10), 3}
	if b != want {
		t.Errorf("expected B at %v, got %v", want, b)
	}
}

func TestLoadTestdata(t *testing.T) {
	doc, err := LoadFile(filepath.Join("testdata", "time_tracking.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "map.pbf")
	if err := Build(doc.Layout(100, orb.Point{}), doc.Ways, doc.Nodes, doc.Relations, path, doc.BaseID); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("expected a non-empty file, got %v", err)
	}
}
