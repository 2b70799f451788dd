// Package osmfile writes and reads OSM entity files in PBF or XML format.
package osmfile

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"

	"github.com/wegman-software/gurka-go/internal/pbf"
)

// Format is an OSM file encoding
type Format string

const (
	FormatPBF Format = "pbf"
	FormatXML Format = "xml"
)

// ParseFormat parses a format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "pbf":
		return FormatPBF, nil
	case "xml", "osm":
		return FormatXML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (pbf or xml)", s)
	}
}

// FormatForPath guesses the format from the file extension, defaulting to PBF
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".osm", ".xml":
		return FormatXML
	default:
		return FormatPBF
	}
}

// WriteOptions controls file encoding
type WriteOptions struct {
	Format    Format
	Generator string
	Bound     *orb.Bound
}

// Encode writes o to w in the requested format
func Encode(w io.Writer, o *osm.OSM, opts WriteOptions) error {
	switch opts.Format {
	case FormatPBF, "":
		encOpts := []pbf.Option{pbf.WithWritingProgram(opts.Generator)}
		if opts.Bound != nil {
			encOpts = append(encOpts, pbf.WithBound(*opts.Bound))
		}
		return pbf.NewEncoder(w, encOpts...).Encode(o)
	case FormatXML:
		doc := *o
		doc.Generator = opts.Generator
		if opts.Bound != nil {
			doc.Bounds = &osm.Bounds{
				MinLat: opts.Bound.Min.Lat(),
				MaxLat: opts.Bound.Max.Lat(),
				MinLon: opts.Bound.Min.Lon(),
				MaxLon: opts.Bound.Max.Lon(),
			}
		}
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("failed to encode XML: %w", err)
		}
		return enc.Flush()
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
}

// WriteFile writes o to path, replacing any existing file. The data is
// written to a temporary file next to path and only renamed into place once
// it was fully written and closed, so a failed write never leaves a file
// that looks valid.
func WriteFile(path string, o *osm.OSM, opts WriteOptions) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, o, opts); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}

// ReadFile reads all entities of a PBF or XML file, chosen by extension
func ReadFile(ctx context.Context, path string) (*osm.OSM, error) {
	if FormatForPath(path) == FormatPBF {
		file, err := pbf.ReadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		return file.Data, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := osmxml.New(ctx, f)
	defer scanner.Close()

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
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	return data, nil
}
