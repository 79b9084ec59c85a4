// Package export writes the finished composite to disk.
package export

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"natcolor/composite"
	"natcolor/raster"

	"github.com/airbusgeo/godal"
)

// ExportError wraps a failed output write.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// WriteCOG writes the composite as a tiled, overviewed, float32
// Cloud-Optimized GeoTIFF honoring the no-data sentinel. The file is
// staged next to the destination and renamed into place.
func WriteCOG(img *composite.Image, path string) error {
	raster.Register()

	mem, err := memDataset(img)
	if err != nil {
		return &ExportError{Path: path, Err: err}
	}
	defer mem.Close()

	tmp := path + ".partial"
	out, err := mem.Translate(tmp, []string{
		"-of", "COG",
		"-co", "COMPRESS=DEFLATE",
		"-co", "BLOCKSIZE=512",
	})
	if err != nil {
		os.Remove(tmp)
		return &ExportError{Path: path, Err: err}
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return &ExportError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

// memDataset copies the composite into an in-memory GDAL dataset
// carrying the grid's georeferencing.
func memDataset(img *composite.Image) (*godal.Dataset, error) {
	grid := img.R
	ds, err := godal.Create(godal.Memory, "", 3, godal.Float32, grid.W, grid.H)
	if err != nil {
		return nil, err
	}
	if err := ds.SetGeoTransform(grid.Transform); err != nil {
		ds.Close()
		return nil, err
	}
	sr, err := spatialRef(grid.Projection)
	if err != nil {
		ds.Close()
		return nil, err
	}
	defer sr.Close()
	if err := ds.SetSpatialRef(sr); err != nil {
		ds.Close()
		return nil, err
	}
	for i, band := range ds.Bands() {
		if err := band.SetNoData(math.NaN()); err != nil {
			ds.Close()
			return nil, err
		}
		src := img.Bands()[i]
		if err := band.Write(0, 0, src.Data, grid.W, grid.H); err != nil {
			ds.Close()
			return nil, err
		}
	}
	return ds, nil
}

func spatialRef(projection string) (*godal.SpatialRef, error) {
	code, ok := strings.CutPrefix(projection, "EPSG:")
	if !ok {
		return nil, fmt.Errorf("unsupported projection %q", projection)
	}
	epsg, err := strconv.Atoi(code)
	if err != nil {
		return nil, fmt.Errorf("unsupported projection %q", projection)
	}
	return godal.NewSpatialRefFromEPSG(epsg)
}
