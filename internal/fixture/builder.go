package fixture

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"github.com/wegman-software/gurka-go/internal/grid"
	"github.com/wegman-software/gurka-go/internal/osmfile"
)

// Builder assembles entity graphs and writes them to disk
type Builder struct {
	// Generator is recorded as writing program, defaults to Generator
	Generator string
	// Format of the output file, defaults to PBF
	Format osmfile.Format
	// Now supplies the entity timestamps, defaults to time.Now
	Now func() time.Time
}

// Build validates and assembles the graph, then writes it to path. Nothing is
// written when a reference cannot be resolved.
func (b *Builder) Build(layout *grid.Layout, ways []Way, nodes []NodeTags, relations []Relation, path string, baseID int64) error {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	generator := b.Generator
	if generator == "" {
		generator = Generator
	}

	data, err := Assemble(layout, ways, nodes, relations, baseID, now().UTC().Truncate(time.Second))
	if err != nil {
		return err
	}
	data.Generator = generator

	opts := osmfile.WriteOptions{Format: b.Format, Generator: generator}
	if len(data.Nodes) > 0 {
		bound := nodeBound(data.Nodes)
		opts.Bound = &bound
	}

	if err := osmfile.WriteFile(path, data, opts); err != nil {
		return fmt.Errorf("failed to write fixture: %w", err)
	}
	return nil
}

// Build writes a PBF file with the default generator and the current time
func Build(layout *grid.Layout, ways []Way, nodes []NodeTags, relations []Relation, path string, baseID int64) error {
	return (&Builder{}).Build(layout, ways, nodes, relations, path, baseID)
}

func nodeBound(nodes osm.Nodes) orb.Bound {
	points := make(orb.MultiPoint, len(nodes))
	for i, n := range nodes {
		points[i] = n.Point()
	}
	return points.Bound()
}
