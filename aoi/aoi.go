// Package aoi resolves the user-supplied area of interest into a single
// orb geometry in geographic WGS84 coordinates.
package aoi

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

const (
	// Meters per degree of latitude; longitude scales by cos(lat).
	metersPerDegree = 111320.0

	circleSegments = 64
)

// Load parses the AOI argument: inline GeoJSON, a GeoJSON file path, or
// WKT. Point geometries are buffered to a circle of radiusMeters.
func Load(spec string, radiusMeters float64) (orb.Geometry, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty AOI")
	}

	var geom orb.Geometry
	var err error
	switch {
	case strings.HasPrefix(spec, "{"):
		geom, err = parseGeoJSON([]byte(spec))
	case fileExists(spec):
		var raw []byte
		raw, err = os.ReadFile(spec)
		if err == nil {
			geom, err = parseGeoJSON(raw)
		}
	default:
		geom, err = wkt.Unmarshal(spec)
	}
	if err != nil {
		return nil, fmt.Errorf("bad AOI %q: %w", spec, err)
	}

	if p, ok := geom.(orb.Point); ok {
		if radiusMeters <= 0 {
			return nil, fmt.Errorf("point AOI requires -radius")
		}
		geom = Circle(p, radiusMeters)
	}
	return geom, nil
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

// parseGeoJSON accepts a bare geometry, a feature, or a feature
// collection. Multiple features collapse to their convex hull.
func parseGeoJSON(raw []byte) (orb.Geometry, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(raw)
		if err != nil {
			return nil, err
		}
		if len(fc.Features) == 0 {
			return nil, fmt.Errorf("feature collection is empty")
		}
		if len(fc.Features) == 1 {
			return fc.Features[0].Geometry, nil
		}
		var geoms []orb.Geometry
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
		return Union(geoms), nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return nil, err
		}
		return f.Geometry, nil
	default:
		g, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, err
		}
		return g.Geometry(), nil
	}
}

// Circle approximates a circle of radiusMeters around p with a closed
// polygon ring, using the local meters-per-degree at p's latitude.
func Circle(p orb.Point, radiusMeters float64) orb.Polygon {
	lat := p[1] * math.Pi / 180
	dx := radiusMeters / (metersPerDegree * math.Cos(lat))
	dy := radiusMeters / metersPerDegree
	ring := make(orb.Ring, 0, circleSegments+1)
	for i := 0; i <= circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		ring = append(ring, orb.Point{p[0] + dx*math.Cos(a), p[1] + dy*math.Sin(a)})
	}
	return orb.Polygon{ring}
}
