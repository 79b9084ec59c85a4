package aoi

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWKTPolygon(t *testing.T) {
	g, err := Load("POLYGON((0 0,1 0,1 1,0 1,0 0))", 0)
	require.NoError(t, err)

	poly, ok := g.(orb.Polygon)
	require.True(t, ok)
	b := poly.Bound()
	assert.Equal(t, orb.Point{0, 0}, b.Min)
	assert.Equal(t, orb.Point{1, 1}, b.Max)
}

func TestLoadInlineGeoJSONPointWithRadius(t *testing.T) {
	g, err := Load(`{"type":"Point","coordinates":[-120.05,47.05]}`, 200)
	require.NoError(t, err)

	poly, ok := g.(orb.Polygon)
	require.True(t, ok)

	b := poly.Bound()
	wantDy := 200 / metersPerDegree
	wantDx := 200 / (metersPerDegree * math.Cos(47.05*math.Pi/180))
	assert.InDelta(t, 2*wantDy, b.Max[1]-b.Min[1], 1e-6)
	assert.InDelta(t, 2*wantDx, b.Max[0]-b.Min[0], 1e-6)
	assert.InDelta(t, -120.05, b.Center()[0], 1e-9)
	assert.InDelta(t, 47.05, b.Center()[1], 1e-9)
}

func TestLoadPointWithoutRadius(t *testing.T) {
	_, err := Load("POINT(-120.05 47.05)", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "radius")
}

func TestLoadGeoJSONFeatureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aoi.geojson")
	content := `{"type":"Feature","properties":{},
		"geometry":{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,2],[0,0]]]}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	g, err := Load(path, 0)
	require.NoError(t, err)
	b := g.Bound()
	assert.Equal(t, orb.Point{0, 0}, b.Min)
	assert.Equal(t, orb.Point{2, 2}, b.Max)
}

func TestLoadFeatureCollectionUnion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aoi.geojson")
	content := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},
		 "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
		{"type":"Feature","properties":{},
		 "geometry":{"type":"Polygon","coordinates":[[[3,3],[4,3],[4,4],[3,4],[3,3]]]}}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	g, err := Load(path, 0)
	require.NoError(t, err)

	poly, ok := g.(orb.Polygon)
	require.True(t, ok)
	b := poly.Bound()
	// The hull covers both squares.
	assert.Equal(t, orb.Point{0, 0}, b.Min)
	assert.Equal(t, orb.Point{4, 4}, b.Max)
}

func TestLoadBadInput(t *testing.T) {
	for _, spec := range []string{"", "not a geometry", `{"type":"Nope"}`} {
		_, err := Load(spec, 0)
		assert.Error(t, err, "spec %q", spec)
	}
}

func TestCircleRingClosed(t *testing.T) {
	c := Circle(orb.Point{10, 50}, 500)
	require.Len(t, c, 1)
	ring := c[0]
	assert.Len(t, ring, circleSegments+1)
	assert.True(t, ring.Closed())
}

func TestUnionClosedRing(t *testing.T) {
	u := Union([]orb.Geometry{
		orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
		orb.Point{5, 5},
	})
	require.Len(t, u, 1)
	assert.True(t, u[0].Closed())
	b := u.Bound()
	assert.Equal(t, orb.Point{0, 0}, b.Min)
	assert.Equal(t, orb.Point{5, 5}, b.Max)
}
