package export

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"natcolor/composite"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"

	log "github.com/sirupsen/logrus"
)

const (
	// Percentile stretch applied independently to each band.
	stretchLow  = 2.0
	stretchHigh = 98.0

	// Longest preview edge; larger composites are downscaled.
	previewMaxDim = 2048

	webpQuality = 90
)

// PreviewPath is the output path with its extension swapped to .webp.
func PreviewPath(out string) string {
	return strings.TrimSuffix(out, filepath.Ext(out)) + ".webp"
}

// WritePreview writes an 8-bit contrast-stretched WebP rendering of the
// composite. No-data pixels come out transparent.
func WritePreview(img *composite.Image, path string) error {
	pv := shrink(previewImage(img))

	tmp := path + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return &ExportError{Path: path, Err: err}
	}
	if err := webp.Encode(f, pv, &webp.Options{Quality: webpQuality}); err != nil {
		f.Close()
		os.Remove(tmp)
		return &ExportError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &ExportError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

// percentile returns the p-th percentile of the finite values in data,
// with linear interpolation between ranks.
func percentile(data []float64, p float64) (float64, bool) {
	vals := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	sort.Float64s(vals)
	idx := p / 100 * float64(len(vals)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	frac := idx - float64(lo)
	return vals[lo]*(1-frac) + vals[hi]*frac, true
}

// stretchBand rescales one band to 0-255 between its stretch
// percentiles. No-data pixels map to 0.
func stretchBand(data []float64) []uint8 {
	out := make([]uint8, len(data))
	lo, ok := percentile(data, stretchLow)
	if !ok {
		return out
	}
	hi, _ := percentile(data, stretchHigh)
	scale := 255 / (hi - lo + 1e-6)
	for i, v := range data {
		if math.IsNaN(v) {
			continue
		}
		s := (v - lo) * scale
		if s < 0 {
			s = 0
		}
		if s > 255 {
			s = 255
		}
		out[i] = uint8(s)
	}
	return out
}

func previewImage(img *composite.Image) *image.NRGBA {
	w, h := img.W(), img.H()
	r := stretchBand(img.R.Data)
	g := stretchBand(img.G.Data)
	b := stretchBand(img.B.Data)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		a := uint8(255)
		if math.IsNaN(img.R.Data[i]) {
			a = 0
		}
		out.SetNRGBA(i%w, i/w, color.NRGBA{R: r[i], G: g[i], B: b[i], A: a})
	}
	return out
}

func shrink(img *image.NRGBA) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	max := w
	if h > max {
		max = h
	}
	if max <= previewMaxDim {
		return img
	}
	scale := float64(previewMaxDim) / float64(max)
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	log.Debugf("Downscaling preview %dx%d -> %dx%d", w, h, dw, dh)
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}
