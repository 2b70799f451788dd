// Package tiles holds the configuration and invocation of the external
// tile builder that turns generated OSM files into a routable graph.
package tiles

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const defaultConfig = `{
  "mjolnir": {"tile_dir": "", "concurrency": 1},
  "thor": {"logging": {"long_request": 100}},
  "meili": {
    "logging": {"long_request": 100},
    "grid": {"cache_size": 100, "size": 100}
  },
  "loki": {
    "actions": ["sources_to_targets"],
    "logging": {"long_request": 100},
    "service_defaults": {
      "minimum_reachability": 50,
      "radius": 0,
      "search_cutoff": 35000,
      "node_snap_tolerance": 5,
      "street_side_tolerance": 5,
      "heading_tolerance": 60
    }
  },
  "service_limits": {
    "auto": {"max_distance": 5000000.0, "max_locations": 20, "max_matrix_distance": 400000.0, "max_matrix_locations": 50},
    "auto_shorter": {"max_distance": 5000000.0, "max_locations": 20, "max_matrix_distance": 400000.0, "max_matrix_locations": 50},
    "bicycle": {"max_distance": 500000.0, "max_locations": 50, "max_matrix_distance": 200000.0, "max_matrix_locations": 50},
    "bus": {"max_distance": 5000000.0, "max_locations": 50, "max_matrix_distance": 400000.0, "max_matrix_locations": 50},
    "hov": {"max_distance": 5000000.0, "max_locations": 20, "max_matrix_distance": 400000.0, "max_matrix_locations": 50},
    "taxi": {"max_distance": 5000000.0, "max_locations": 20, "max_matrix_distance": 400000.0, "max_matrix_locations": 50},
    "isochrone": {"max_contours": 4, "max_distance": 25000.0, "max_locations": 1, "max_time": 120},
    "max_avoid_locations": 50, "max_radius": 200, "max_reachability": 100, "max_alternates": 2,
    "multimodal": {"max_distance": 500000.0, "max_locations": 50, "max_matrix_distance": 0.0, "max_matrix_locations": 0},
    "pedestrian": {"max_distance": 250000.0, "max_locations": 50, "max_matrix_distance": 200000.0, "max_matrix_locations": 50, "max_transit_walking_distance": 10000, "min_transit_walking_distance": 1},
    "skadi": {"max_shape": 750000, "min_resample": 10.0},
    "trace": {"max_distance": 200000.0, "max_gps_accuracy": 100.0, "max_search_radius": 100, "max_shape": 16000, "max_best_paths": 4, "max_best_paths_shape": 100},
    "transit": {"max_distance": 500000.0, "max_locations": 50, "max_matrix_distance": 200000.0, "max_matrix_locations": 50},
    "truck": {"max_distance": 5000000.0, "max_locations": 20, "max_matrix_distance": 400000.0, "max_matrix_locations": 50}
  }
}`

// Config is the tile builder configuration tree, addressed with dotted
// paths such as "mjolnir.tile_dir"
type Config map[string]any

// DefaultConfig returns the default configuration with mjolnir.tile_dir set
func DefaultConfig(tileDir string) Config {
	var cfg Config
	if err := json.Unmarshal([]byte(defaultConfig), &cfg); err != nil {
		panic(fmt.Sprintf("invalid default tile config: %v", err))
	}
	cfg.Set("mjolnir.tile_dir", tileDir)
	return cfg
}

// Set stores value at path, creating intermediate objects as needed
func (c Config) Set(path string, value any) {
	keys := strings.Split(path, ".")
	node := map[string]any(c)
	for _, key := range keys[:len(keys)-1] {
		child, ok := node[key].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[key] = child
		}
		node = child
	}
	node[keys[len(keys)-1]] = value
}

// Get returns the value at path
func (c Config) Get(path string) (any, bool) {
	var node any = map[string]any(c)
	for _, key := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// String returns the string value at path or "" when absent
func (c Config) String(path string) string {
	v, ok := c.Get(path)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// TileDir returns mjolnir.tile_dir
func (c Config) TileDir() string {
	return c.String("mjolnir.tile_dir")
}

// WriteFile writes the configuration as JSON
func (c Config) WriteFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tile config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write tile config: %w", err)
	}
	return nil
}
