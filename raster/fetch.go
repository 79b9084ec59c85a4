package raster

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"golang.org/x/sync/errgroup"

	log "github.com/sirupsen/logrus"
)

// DownloadError wraps a failed band download.
type DownloadError struct {
	Href string
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.Href, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ResampleAlg names a GDAL warp resampling algorithm.
type ResampleAlg string

const (
	// Nearest must be used for classification bands.
	Nearest  ResampleAlg = "near"
	Bilinear ResampleAlg = "bilinear"
)

var registerOnce sync.Once

// Register loads the GDAL drivers. Idempotent.
func Register() {
	registerOnce.Do(godal.RegisterAll)
}

func fmtCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FetchBand downloads a single band asset warped onto the target grid.
func FetchBand(ctx context.Context, href string, t Target, alg ResampleAlg) (*Grid, error) {
	Register()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Debugf("Fetching band %q", href)

	ds, err := godal.Open("/vsicurl/" + href)
	if err != nil {
		return nil, &DownloadError{Href: href, Err: err}
	}
	defer ds.Close()

	warped, err := ds.Warp("", []string{
		"-of", "MEM",
		"-t_srs", "EPSG:4326",
		"-te", fmtCoord(t.Bound.Min[0]), fmtCoord(t.Bound.Min[1]), fmtCoord(t.Bound.Max[0]), fmtCoord(t.Bound.Max[1]),
		"-ts", strconv.Itoa(t.W), strconv.Itoa(t.H),
		"-r", string(alg),
		"-ot", "Float64",
		"-dstnodata", "nan",
	})
	if err != nil {
		return nil, &DownloadError{Href: href, Err: err}
	}
	defer warped.Close()

	grid := NewGrid(t.W, t.H, t.Transform(), t.Projection())
	if err := warped.Bands()[0].Read(0, 0, grid.Data, t.W, t.H); err != nil {
		return nil, &DownloadError{Href: href, Err: err}
	}
	return grid, nil
}

// FetchBands downloads several band assets in parallel, preserving
// order. The first failure cancels the remaining downloads.
func FetchBands(ctx context.Context, hrefs []string, t Target, alg ResampleAlg) ([]*Grid, error) {
	eg, ctx := errgroup.WithContext(ctx)
	grids := make([]*Grid, len(hrefs))
	for i, href := range hrefs {
		i, href := i, href
		eg.Go(func() error {
			g, err := FetchBand(ctx, href, t, alg)
			if err != nil {
				return err
			}
			grids[i] = g
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return grids, nil
}

// GeometryMask rasterizes geom onto the target grid: 1 inside the
// geometry, 0 outside.
func GeometryMask(geom orb.Geometry, t Target) (*Grid, error) {
	Register()
	sr, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return nil, err
	}
	defer sr.Close()

	g, err := godal.NewGeometryFromWKT(wkt.MarshalString(geom), sr)
	if err != nil {
		return nil, err
	}
	defer g.Close()

	ds, err := godal.Create(godal.Memory, "", 1, godal.Byte, t.W, t.H)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	if err := ds.SetGeoTransform(t.Transform()); err != nil {
		return nil, err
	}
	if err := ds.SetSpatialRef(sr); err != nil {
		return nil, err
	}
	if err := ds.RasterizeGeometry(g, godal.Values(1), godal.AllTouched()); err != nil {
		return nil, err
	}

	grid := NewGrid(t.W, t.H, t.Transform(), t.Projection())
	if err := ds.Bands()[0].Read(0, 0, grid.Data, t.W, t.H); err != nil {
		return nil, err
	}
	return grid, nil
}
