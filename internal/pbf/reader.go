package pbf

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// File is the decoded content of a PBF file
type File struct {
	Header *osmpbf.Header
	Data   *osm.OSM
}

// Decode reads every entity of a PBF stream
func Decode(ctx context.Context, r io.Reader) (*File, error) {
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()

	header, err := scanner.Header()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	data := &osm.OSM{}
	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			data.Nodes = append(data.Nodes, obj)
		case *osm.Way:
			data.Ways = append(data.Ways, obj)
		case *osm.Relation:
			data.Relations = append(data.Relations, obj)
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to scan entities: %w", err)
	}

	if header != nil {
		data.Generator = header.WritingProgram
	}
	return &File{Header: header, Data: data}, nil
}

// ReadFile decodes the PBF file at path
func ReadFile(ctx context.Context, path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(ctx, f)
}
