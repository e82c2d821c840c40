package render

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Layer is an optional GeoJSON overlay.
type Layer struct {
	Name   string
	Raw    []byte           // Document as read, embedded in HTML maps
	Lines  []orb.LineString // Drawn on frames
	Points []orb.Point      // Drawn on frames
}

// LoadLayer reads a GeoJSON file. An empty path returns nil.
func LoadLayer(name, path string) (*Layer, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layer %s: %w", name, err)
	}
	return ParseLayer(name, data)
}

// ParseLayer decodes a FeatureCollection, Feature or bare geometry document.
func ParseLayer(name string, data []byte) (*Layer, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse layer %s: %w", name, err)
	}

	l := &Layer{Name: name, Raw: data}
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse layer %s: %w", name, err)
		}
		for _, f := range fc.Features {
			l.add(f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("parse layer %s: %w", name, err)
		}
		l.add(f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("parse layer %s: %w", name, err)
		}
		l.add(g.Geometry())
	}
	return l, nil
}

// add collects drawable parts. Polygons are embedded in HTML maps but not drawn.
func (l *Layer) add(g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		l.Points = append(l.Points, g)
	case orb.MultiPoint:
		l.Points = append(l.Points, g...)
	case orb.LineString:
		l.Lines = append(l.Lines, g)
	case orb.MultiLineString:
		l.Lines = append(l.Lines, g...)
	case orb.Collection:
		for _, sub := range g {
			l.add(sub)
		}
	}
}
