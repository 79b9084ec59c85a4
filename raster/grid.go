// Package raster holds the in-memory pixel grid model and the
// GDAL-backed band download layer.
package raster

import "math"

// NoData is the sentinel for masked or invalid pixels.
var NoData = math.NaN()

// Grid is a single-band raster: row-major float64 pixels plus the
// affine geotransform and projection that place them on the earth.
type Grid struct {
	W, H int
	Data []float64
	// Transform is the GDAL-style affine geotransform
	// {originX, pixelWidth, rowRotation, originY, colRotation, -pixelHeight}.
	Transform  [6]float64
	Projection string
}

func NewGrid(w, h int, transform [6]float64, projection string) *Grid {
	return &Grid{
		W:          w,
		H:          h,
		Data:       make([]float64, w*h),
		Transform:  transform,
		Projection: projection,
	}
}

func (g *Grid) At(x, y int) float64 {
	return g.Data[y*g.W+x]
}

func (g *Grid) Set(x, y int, v float64) {
	g.Data[y*g.W+x] = v
}

// PixelToGeo maps pixel coordinates to geographic coordinates. Pixel
// (0, 0) maps to the grid origin (the upper-left corner).
func (g *Grid) PixelToGeo(px, py float64) (x, y float64) {
	t := g.Transform
	return t[0] + px*t[1] + py*t[2], t[3] + px*t[4] + py*t[5]
}

// GeoToPixel inverts PixelToGeo for axis-aligned grids (no rotation
// terms).
func (g *Grid) GeoToPixel(x, y float64) (px, py float64) {
	t := g.Transform
	return (x - t[0]) / t[1], (y - t[3]) / t[5]
}

func (g *Grid) Clone() *Grid {
	out := NewGrid(g.W, g.H, g.Transform, g.Projection)
	copy(out.Data, g.Data)
	return out
}

// Map returns a new grid with fn applied to every pixel.
func (g *Grid) Map(fn func(float64) float64) *Grid {
	out := NewGrid(g.W, g.H, g.Transform, g.Projection)
	for i, v := range g.Data {
		out.Data[i] = fn(v)
	}
	return out
}

// ResampleTo resamples the grid onto target by nearest neighbour. The
// grid and the target are assumed to cover the same bound, which holds
// for everything fetched through this package.
func (g *Grid) ResampleTo(t Target) *Grid {
	out := NewGrid(t.W, t.H, t.Transform(), t.Projection())
	for y := 0; y < t.H; y++ {
		sy := y * g.H / t.H
		for x := 0; x < t.W; x++ {
			out.Set(x, y, g.At(x*g.W/t.W, sy))
		}
	}
	return out
}
