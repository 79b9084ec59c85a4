package scene

import (
	"math"
	"testing"

	"natcolor/raster"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestMaskFraction(t *testing.T) {
	m := maskWithFraction(0.3)
	assert.InDelta(t, 0.3, m.Fraction(), 1e-9)
}

func TestMaskFractionIgnoresOutsidePixels(t *testing.T) {
	m := maskWithFraction(0)
	// Flag two pixels cloudy but move one of them outside the AOI.
	m.Cloudy.Data[0] = 1
	m.Cloudy.Data[1] = 1
	m.Inside.Data[1] = 0
	// 1 cloudy of 9 inside.
	assert.InDelta(t, 1.0/9.0, m.Fraction(), 1e-9)
}

func TestMaskFractionEmptyAOI(t *testing.T) {
	m := maskWithFraction(0)
	for i := range m.Inside.Data {
		m.Inside.Data[i] = 0
	}
	assert.Equal(t, 1.0, m.Fraction())
}

func TestMaskCombined(t *testing.T) {
	m := maskWithFraction(0.1)
	m.Inside.Data[9] = 0

	c := m.Combined()
	assert.Equal(t, 1.0, c.Data[0]) // cloudy
	assert.Equal(t, 0.0, c.Data[5]) // clear, inside
	assert.Equal(t, 1.0, c.Data[9]) // outside the AOI
	// The source mask is untouched.
	assert.Equal(t, 0.0, m.Cloudy.Data[9])
}

func TestSCLCloudy(t *testing.T) {
	cloudy := []float64{0, 8, 9, 10, 11, math.NaN()}
	for _, v := range cloudy {
		assert.True(t, SentinelL2A.Cloudy(v), "SCL %v should be cloudy", v)
	}
	clear := []float64{1, 2, 3, 4, 5, 6, 7}
	for _, v := range clear {
		assert.False(t, SentinelL2A.Cloudy(v), "SCL %v should be clear", v)
	}
}

func TestQAPixelCloudy(t *testing.T) {
	assert.True(t, LandsatC2L2.Cloudy(1))       // fill
	assert.True(t, LandsatC2L2.Cloudy(1<<3))    // cloud
	assert.True(t, LandsatC2L2.Cloudy(1<<4))    // cloud shadow
	assert.True(t, LandsatC2L2.Cloudy(math.NaN()))
	// A typical clear land pixel.
	assert.False(t, LandsatC2L2.Cloudy(21824))
	assert.False(t, LandsatC2L2.Cloudy(1<<2)) // cirrus alone is fine
}

func TestAssetHref(t *testing.T) {
	item := testItem("s1", cloudPct(5), 10)
	href, err := AssetHref(item, "B04")
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/s1/B04.tif", href)

	_, err = AssetHref(item, "pan")
	assert.Error(t, err)
}

func TestGridMaskTargetAlignment(t *testing.T) {
	// The mask grid built at collection resolution must resample onto
	// the composite grid without shifting the AOI bound.
	bound := orb.Bound{Min: orb.Point{-120.1, 47.0}, Max: orb.Point{-120.0, 47.1}}
	coarse := raster.TargetFor(bound, 30)
	fine := raster.TargetFor(bound, 15)

	mask := raster.NewGrid(coarse.W, coarse.H, coarse.Transform(), coarse.Projection())
	mask.Set(0, 0, 1)
	out := mask.ResampleTo(fine)

	assert.Equal(t, fine.W, out.W)
	assert.Equal(t, fine.H, out.H)
	assert.Equal(t, 1.0, out.At(0, 0))
	assert.Equal(t, 0.0, out.At(out.W-1, out.H-1))
	assert.Equal(t, fine.Transform(), out.Transform)
}
