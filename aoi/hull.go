package aoi

import (
	"github.com/paulmach/orb"

	hull "github.com/furstenheim/go-convex-hull-2d"
)

type coordinates []orb.Point

func (c coordinates) Take(i int) (x, y float64) {
	return c[i][0], c[i][1]
}

func (c coordinates) Len() int {
	return len(c)
}

func (c coordinates) Swap(i, j int) {
	c[i], c[j] = c[j], c[i]
}

func (c coordinates) Slice(i, j int) hull.Interface {
	return c[i:j]
}

// Union collapses multiple AOI geometries into a single polygon by
// taking the convex hull of their vertices.
func Union(geoms []orb.Geometry) orb.Polygon {
	var c coordinates
	for _, g := range geoms {
		c = append(c, vertices(g)...)
	}
	h := hull.New(c)

	var ring orb.Ring
	for i := 0; i < h.Len(); i++ {
		x, y := h.Take(i)
		ring = append(ring, orb.Point{x, y})
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

func vertices(g orb.Geometry) []orb.Point {
	switch t := g.(type) {
	case orb.Point:
		return []orb.Point{t}
	case orb.MultiPoint:
		return t
	case orb.LineString:
		return t
	case orb.Ring:
		return t
	case orb.Polygon:
		if len(t) == 0 {
			return nil
		}
		return t[0]
	case orb.MultiPolygon:
		var ps []orb.Point
		for _, p := range t {
			if len(p) > 0 {
				ps = append(ps, p[0]...)
			}
		}
		return ps
	default:
		return nil
	}
}
