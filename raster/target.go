package raster

import (
	"math"

	"github.com/paulmach/orb"
)

// Meters per degree of latitude; longitude scales by cos(lat).
const metersPerDegree = 111320.0

// Target is the common pixel grid, in geographic WGS84 coordinates,
// that every band of a run is warped onto. Sharing one target is what
// keeps multispectral, panchromatic and mask grids aligned.
type Target struct {
	Bound orb.Bound
	W, H  int
}

// TargetFor sizes a grid over bound at a nominal ground resolution in
// meters, converted to degrees at the bound's center latitude.
func TargetFor(bound orb.Bound, resMeters float64) Target {
	lat := bound.Center()[1] * math.Pi / 180
	dx := resMeters / (metersPerDegree * math.Cos(lat))
	dy := resMeters / metersPerDegree
	w := int(math.Ceil((bound.Max[0] - bound.Min[0]) / dx))
	h := int(math.Ceil((bound.Max[1] - bound.Min[1]) / dy))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return Target{Bound: bound, W: w, H: h}
}

// Transform is the affine geotransform of the target grid.
func (t Target) Transform() [6]float64 {
	dx := (t.Bound.Max[0] - t.Bound.Min[0]) / float64(t.W)
	dy := (t.Bound.Max[1] - t.Bound.Min[1]) / float64(t.H)
	return [6]float64{t.Bound.Min[0], dx, 0, t.Bound.Max[1], 0, -dy}
}

func (t Target) Projection() string {
	return "EPSG:4326"
}
