// Package composite stacks reflectance bands into a natural-color image
// and applies the cloud mask and the optional Brovey pan-sharpening.
package composite

import (
	"fmt"
	"math"

	"natcolor/raster"
)

// Image is a 3-band natural-color composite on a shared grid.
type Image struct {
	R, G, B *raster.Grid
}

// Stack builds an Image from the red, green and blue grids, which must
// share shape and geotransform.
func Stack(r, g, b *raster.Grid) (*Image, error) {
	for _, band := range []*raster.Grid{g, b} {
		if band.W != r.W || band.H != r.H {
			return nil, fmt.Errorf("band grids differ: %dx%d vs %dx%d", r.W, r.H, band.W, band.H)
		}
		if band.Transform != r.Transform {
			return nil, fmt.Errorf("band geotransforms differ")
		}
	}
	return &Image{R: r, G: g, B: b}, nil
}

func (im *Image) W() int { return im.R.W }
func (im *Image) H() int { return im.R.H }

func (im *Image) Bands() []*raster.Grid {
	return []*raster.Grid{im.R, im.G, im.B}
}

// ApplyMask sets every pixel flagged in mask to no-data in all bands.
func (im *Image) ApplyMask(mask *raster.Grid) error {
	if mask.W != im.W() || mask.H != im.H() {
		return fmt.Errorf("mask %dx%d does not match composite %dx%d", mask.W, mask.H, im.W(), im.H())
	}
	for i, v := range mask.Data {
		if v != 0 {
			im.R.Data[i] = raster.NoData
			im.G.Data[i] = raster.NoData
			im.B.Data[i] = raster.NoData
		}
	}
	return nil
}

// Pansharpen applies the Brovey transform: each band is scaled by the
// ratio of the panchromatic value to the RGB intensity. A pixel whose
// intensity is zero or no-data becomes no-data instead of dividing.
func (im *Image) Pansharpen(pan *raster.Grid) error {
	if pan.W != im.W() || pan.H != im.H() {
		return fmt.Errorf("pan band %dx%d does not match composite %dx%d", pan.W, pan.H, im.W(), im.H())
	}
	for i, p := range pan.Data {
		r, g, b := im.R.Data[i], im.G.Data[i], im.B.Data[i]
		intensity := r + g + b
		if intensity == 0 || math.IsNaN(intensity) || math.IsNaN(p) {
			im.R.Data[i] = raster.NoData
			im.G.Data[i] = raster.NoData
			im.B.Data[i] = raster.NoData
			continue
		}
		ratio := p / intensity
		im.R.Data[i] = r * ratio
		im.G.Data[i] = g * ratio
		im.B.Data[i] = b * ratio
	}
	return nil
}
