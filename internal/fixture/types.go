// Package fixture turns a projected grid layout and descriptions of ways,
// node tags and relations into a complete OSM entity graph and writes it out.
package fixture

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/osm"
	"gopkg.in/yaml.v3"
)

// Generator is the default writing program recorded in generated files
const Generator = "valhalla-test-creator"

var (
	// ErrUndefinedNode is returned when a node name is used but not drawn on the map
	ErrUndefinedNode = errors.New("undefined node reference")
	// ErrUndefinedWay is returned when a relation member names a way that was not declared
	ErrUndefinedWay = errors.New("undefined way reference")
	// ErrEmptyWay is returned for a way without any nodes
	ErrEmptyWay = errors.New("way has no nodes")
	// ErrDuplicateWay is returned when two ways share the same node sequence
	ErrDuplicateWay = errors.New("duplicate way")
)

// Way describes a way by its node sequence. The sequence is both the ordered
// polyline and the identity of the way: "ABC" runs from A through B to C and
// is referenced by relations as "ABC".
type Way struct {
	Nodes string
	Tags  osm.Tags
}

// NodeTags attaches tags to a node drawn on the map
type NodeTags struct {
	Node string
	Tags osm.Tags
}

// MemberType discriminates relation members
type MemberType int

const (
	MemberNode MemberType = iota
	MemberWay
)

func (t MemberType) String() string {
	switch t {
	case MemberNode:
		return "node"
	case MemberWay:
		return "way"
	default:
		return fmt.Sprintf("MemberType(%d)", int(t))
	}
}

// UnmarshalYAML accepts "node" or "way"
func (t *MemberType) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(value.Value) {
	case "node", "n":
		*t = MemberNode
	case "way", "w":
		*t = MemberWay
	default:
		return fmt.Errorf("line %d: unknown member type %q", value.Line, value.Value)
	}
	return nil
}

// Member is a relation member. Ref is a node name for node members and a
// way node sequence for way members.
type Member struct {
	Type MemberType `yaml:"type"`
	Ref  string     `yaml:"ref"`
	Role string     `yaml:"role"`
}

// Relation describes a relation by its ordered members
type Relation struct {
	Members []Member
	Tags    osm.Tags
}

// withName returns tags with a name tag prepended when none is present
func withName(tags osm.Tags, name string) osm.Tags {
	out := make(osm.Tags, 0, len(tags)+1)
	if !hasKey(tags, "name") {
		out = append(out, osm.Tag{Key: "name", Value: name})
	}
	return append(out, tags...)
}

func hasKey(tags osm.Tags, key string) bool {
	for _, t := range tags {
		if t.Key == key {
			return true
		}
	}
	return false
}
