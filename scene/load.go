package scene

import (
	"context"

	"natcolor/raster"
	"natcolor/stac"

	"github.com/paulmach/orb"
)

// GridMaskLoader downloads the scene's classification band clipped to
// the AOI bound and rasterizes the AOI geometry next to it.
type GridMaskLoader struct{}

func (GridMaskLoader) Load(ctx context.Context, item *stac.Item, c Collection, geom orb.Geometry) (*Mask, error) {
	href, err := AssetHref(item, c.MaskAsset)
	if err != nil {
		return nil, err
	}
	target := raster.TargetFor(geom.Bound(), c.Resolution)

	// Classification values must not be interpolated.
	band, err := raster.FetchBand(ctx, href, target, raster.Nearest)
	if err != nil {
		return nil, err
	}
	inside, err := raster.GeometryMask(geom, target)
	if err != nil {
		return nil, err
	}

	cloudy := band.Map(func(v float64) float64 {
		if c.Cloudy(v) {
			return 1
		}
		return 0
	})
	return &Mask{Cloudy: cloudy, Inside: inside}, nil
}
