package grid

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// ErrUnknownNode is returned when a lookup names a node that is not on the map
var ErrUnknownNode = errors.New("node not in layout")

// Layout maps single character node names to their projected coordinates.
// Names iterate in the order they were first seen while scanning the map.
type Layout struct {
	names  []string
	index  map[string]int
	points []orb.Point
}

// NewLayout creates an empty layout
func NewLayout() *Layout {
	return &Layout{index: make(map[string]int)}
}

// Set stores the coordinate for a node. Re-setting a name replaces its
// coordinate but keeps its first position.
func (l *Layout) Set(name string, p orb.Point) {
	if i, ok := l.index[name]; ok {
		l.points[i] = p
		return
	}
	l.index[name] = len(l.names)
	l.names = append(l.names, name)
	l.points = append(l.points, p)
}

// Len returns the number of nodes in the layout
func (l *Layout) Len() int {
	return len(l.names)
}

// Has reports whether the layout contains the node
func (l *Layout) Has(name string) bool {
	_, ok := l.index[name]
	return ok
}

// Names returns node names in layout order
func (l *Layout) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Ordinal returns the stable position of a node in layout order
func (l *Layout) Ordinal(name string) (int, bool) {
	i, ok := l.index[name]
	return i, ok
}

// Location returns the coordinate of a node
func (l *Layout) Location(name string) (orb.Point, bool) {
	i, ok := l.index[name]
	if !ok {
		return orb.Point{}, false
	}
	return l.points[i], true
}

// Locations resolves several node names at once, e.g. the waypoints of a route request
func (l *Layout) Locations(names ...string) ([]orb.Point, error) {
	out := make([]orb.Point, 0, len(names))
	for _, name := range names {
		p, ok := l.Location(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, name)
		}
		out = append(out, p)
	}
	return out, nil
}

// Each calls fn for every node in layout order
func (l *Layout) Each(fn func(name string, p orb.Point)) {
	for i, name := range l.names {
		fn(name, l.points[i])
	}
}

// Bound returns the bounding box of all nodes. An empty layout has an empty bound at the origin.
func (l *Layout) Bound() orb.Bound {
	if len(l.points) == 0 {
		return orb.Bound{}
	}
	return orb.MultiPoint(l.points).Bound()
}
