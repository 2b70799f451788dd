package fixture

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"github.com/wegman-software/gurka-go/internal/grid"
)

// idSequence hands out dense ids shared by nodes, ways and relations
type idSequence struct {
	next int64
}

func (s *idSequence) take() int64 {
	id := s.next
	s.next++
	return id
}

// Assemble resolves all references against the layout and builds the entity
// graph. Ids start at baseID and are assigned to the used nodes in layout
// order, then to the ways, then to the relations. Nodes that nothing refers
// to are left out.
func Assemble(layout *grid.Layout, ways []Way, nodes []NodeTags, relations []Relation, baseID int64, timestamp time.Time) (*osm.OSM, error) {
	if err := checkWays(ways); err != nil {
		return nil, err
	}

	used, err := usedNodes(layout, ways, nodes, relations)
	if err != nil {
		return nil, err
	}

	seq := &idSequence{next: baseID}
	out := &osm.OSM{Version: "0.6", Generator: Generator}

	var nodeIDs map[string]osm.NodeID
	out.Nodes, nodeIDs = emitNodes(seq, layout, used, nodeTagIndex(nodes), timestamp)

	var wayIDs map[string]osm.WayID
	out.Ways, wayIDs = emitWays(seq, ways, nodeIDs, timestamp)

	out.Relations, err = emitRelations(seq, relations, nodeIDs, wayIDs, timestamp)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func checkWays(ways []Way) error {
	seen := make(map[string]bool, len(ways))
	for i, w := range ways {
		if w.Nodes == "" {
			return fmt.Errorf("way #%d: %w", i, ErrEmptyWay)
		}
		if seen[w.Nodes] {
			return fmt.Errorf("%w %s", ErrDuplicateWay, w.Nodes)
		}
		seen[w.Nodes] = true
	}
	return nil
}

// usedNodes collects every node name referenced by a way, a node tag
// declaration or a node member and checks that all of them are on the map
func usedNodes(layout *grid.Layout, ways []Way, nodes []NodeTags, relations []Relation) (map[string]bool, error) {
	used := make(map[string]bool)
	var order []string
	mark := func(name string) {
		if !used[name] {
			used[name] = true
			order = append(order, name)
		}
	}

	for _, w := range ways {
		for _, ch := range w.Nodes {
			mark(string(ch))
		}
	}
	for _, n := range nodes {
		for _, ch := range n.Node {
			mark(string(ch))
		}
	}
	for _, r := range relations {
		for _, m := range r.Members {
			if m.Type == MemberNode {
				mark(m.Ref)
			}
		}
	}

	for _, name := range order {
		if !layout.Has(name) {
			return nil, fmt.Errorf("%w: node %q was referred to but was not in the ASCII map", ErrUndefinedNode, name)
		}
	}
	return used, nil
}

// nodeTagIndex groups node tag declarations by node name. Repeated
// declarations for the same node are concatenated.
func nodeTagIndex(nodes []NodeTags) map[string]osm.Tags {
	index := make(map[string]osm.Tags, len(nodes))
	for _, n := range nodes {
		index[n.Node] = append(index[n.Node], n.Tags...)
	}
	return index
}

func emitNodes(seq *idSequence, layout *grid.Layout, used map[string]bool, tags map[string]osm.Tags, timestamp time.Time) (osm.Nodes, map[string]osm.NodeID) {
	nodes := make(osm.Nodes, 0, len(used))
	ids := make(map[string]osm.NodeID, len(used))

	layout.Each(func(name string, p orb.Point) {
		if !used[name] {
			return
		}
		id := osm.NodeID(seq.take())
		ids[name] = id
		nodes = append(nodes, &osm.Node{
			ID:        id,
			Lat:       p.Lat(),
			Lon:       p.Lon(),
			Visible:   true,
			Version:   1,
			Timestamp: timestamp,
			Tags:      withName(tags[name], name),
		})
	})

	return nodes, ids
}

func emitWays(seq *idSequence, ways []Way, nodeIDs map[string]osm.NodeID, timestamp time.Time) (osm.Ways, map[string]osm.WayID) {
	out := make(osm.Ways, 0, len(ways))
	ids := make(map[string]osm.WayID, len(ways))

	for _, w := range ways {
		id := osm.WayID(seq.take())
		ids[w.Nodes] = id

		refs := make(osm.WayNodes, 0, len(w.Nodes))
		for _, ch := range w.Nodes {
			refs = append(refs, osm.WayNode{ID: nodeIDs[string(ch)]})
		}

		out = append(out, &osm.Way{
			ID:        id,
			Visible:   true,
			Version:   1,
			Timestamp: timestamp,
			Nodes:     refs,
			Tags:      withName(w.Tags, w.Nodes),
		})
	}

	return out, ids
}

func emitRelations(seq *idSequence, relations []Relation, nodeIDs map[string]osm.NodeID, wayIDs map[string]osm.WayID, timestamp time.Time) (osm.Relations, error) {
	out := make(osm.Relations, 0, len(relations))

	for i, r := range relations {
		members := make(osm.Members, 0, len(r.Members))
		for _, m := range r.Members {
			switch m.Type {
			case MemberNode:
				members = append(members, osm.Member{Type: osm.TypeNode, Ref: int64(nodeIDs[m.Ref]), Role: m.Role})
			case MemberWay:
				id, ok := wayIDs[m.Ref]
				if !ok {
					return nil, fmt.Errorf("relation #%d: %w %s", i, ErrUndefinedWay, m.Ref)
				}
				members = append(members, osm.Member{Type: osm.TypeWay, Ref: int64(id), Role: m.Role})
			default:
				return nil, fmt.Errorf("relation #%d: unsupported member type %v", i, m.Type)
			}
		}

		tags := make(osm.Tags, len(r.Tags))
		copy(tags, r.Tags)

		out = append(out, &osm.Relation{
			ID:        osm.RelationID(seq.take()),
			Visible:   true,
			Version:   1,
			Timestamp: timestamp,
			Members:   members,
			Tags:      tags,
		})
	}

	return out, nil
}
