package fixture

import (
	"bytes"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"gopkg.in/yaml.v3"

	"github.com/wegman-software/gurka-go/internal/grid"
)

// Document is a fixture described in YAML:
//
//	gridsize: 100
//	map: |
//	  A----B----C
//	       |
//	       D
//	ways:
//	  ABC: {highway: primary}
//	  BD: {highway: residential}
//	nodes:
//	  B: {highway: traffic_signals}
//	relations:
//	  - members:
//	      - {type: way, ref: ABC, role: from}
//	      - {type: node, ref: B, role: via}
//	      - {type: way, ref: BD, role: to}
//	    tags: {type: restriction, restriction: no_right_turn}
//
// Mapping order of ways and tags is preserved.
type Document struct {
	Name      string
	Map       string
	GridSize  float64
	TopLeft   orb.Point
	BaseID    int64
	Ways      []Way
	Nodes     []NodeTags
	Relations []Relation

	hasTopLeft bool
}

type rawDocument struct {
	Name      string        `yaml:"name"`
	Map       string        `yaml:"map"`
	GridSize  float64       `yaml:"gridsize"`
	TopLeft   []float64     `yaml:"top_left"`
	BaseID    int64         `yaml:"base_id"`
	Ways      yaml.Node     `yaml:"ways"`
	Nodes     yaml.Node     `yaml:"nodes"`
	Relations []rawRelation `yaml:"relations"`
}

type rawRelation struct {
	Members []Member  `yaml:"members"`
	Tags    yaml.Node `yaml:"tags"`
}

// Parse decodes a YAML fixture document
func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse fixture YAML: %w", err)
	}

	doc := &Document{
		Name:     raw.Name,
		Map:      raw.Map,
		GridSize: raw.GridSize,
		BaseID:   raw.BaseID,
	}

	switch len(raw.TopLeft) {
	case 0:
	case 2:
		doc.TopLeft = orb.Point{raw.TopLeft[0], raw.TopLeft[1]}
		doc.hasTopLeft = true
	default:
		return nil, fmt.Errorf("top_left must be [lon, lat], got %v", raw.TopLeft)
	}

	ways, err := decodeKeyedTags(&raw.Ways)
	if err != nil {
		return nil, fmt.Errorf("ways: %w", err)
	}
	for _, kt := range ways {
		doc.Ways = append(doc.Ways, Way{Nodes: kt.key, Tags: kt.tags})
	}

	nodes, err := decodeKeyedTags(&raw.Nodes)
	if err != nil {
		return nil, fmt.Errorf("nodes: %w", err)
	}
	for _, kt := range nodes {
		doc.Nodes = append(doc.Nodes, NodeTags{Node: kt.key, Tags: kt.tags})
	}

	for i, r := range raw.Relations {
		tags, err := decodeTags(&r.Tags)
		if err != nil {
			return nil, fmt.Errorf("relation #%d: %w", i, err)
		}
		doc.Relations = append(doc.Relations, Relation{Members: r.Members, Tags: tags})
	}

	return doc, nil
}

// LoadFile reads a YAML fixture document from disk
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Layout projects the document's map. The defaults apply when the document
// does not set its own cell size or top left coordinate.
func (d *Document) Layout(defaultGridSize float64, defaultTopLeft orb.Point) *grid.Layout {
	size := d.GridSize
	if size <= 0 {
		size = defaultGridSize
	}
	topLeft := defaultTopLeft
	if d.hasTopLeft {
		topLeft = d.TopLeft
	}
	return grid.Project(d.Map, size, topLeft)
}

type keyedTags struct {
	key  string
	tags osm.Tags
}

// decodeKeyedTags decodes a mapping of names to tag mappings in document order
func decodeKeyedTags(n *yaml.Node) ([]keyedTags, error) {
	if isEmptyNode(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}

	out := make([]keyedTags, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		tags, err := decodeTags(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key.Value, err)
		}
		out = append(out, keyedTags{key: key.Value, tags: tags})
	}
	return out, nil
}

// decodeTags decodes a flat key/value mapping in document order
func decodeTags(n *yaml.Node) (osm.Tags, error) {
	if isEmptyNode(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: tags must be a mapping", n.Line)
	}

	tags := make(osm.Tags, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: tag %s must have a scalar value", value.Line, key.Value)
		}
		tags = append(tags, osm.Tag{Key: key.Value, Value: value.Value})
	}
	return tags, nil
}

func isEmptyNode(n *yaml.Node) bool {
	return n == nil || n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}
