package scene

import "natcolor/raster"

// Mask is the per-scene cloud mask over the AOI grid.
type Mask struct {
	// Cloudy is 1 where the pixel is cloud, shadow, or invalid.
	Cloudy *raster.Grid
	// Inside is 1 where the pixel falls within the AOI geometry.
	Inside *raster.Grid
}

// Fraction returns the cloudy share of AOI pixels, in [0, 1]. An AOI
// with no pixels counts as fully cloudy.
func (m *Mask) Fraction() float64 {
	var inside, flagged int
	for i, v := range m.Inside.Data {
		if v == 0 {
			continue
		}
		inside++
		if m.Cloudy.Data[i] != 0 {
			flagged++
		}
	}
	if inside == 0 {
		return 1
	}
	return float64(flagged) / float64(inside)
}

// Combined returns a grid that is 1 where a composite pixel must be
// masked: cloudy, or outside the AOI geometry.
func (m *Mask) Combined() *raster.Grid {
	out := m.Cloudy.Clone()
	for i, v := range m.Inside.Data {
		if v == 0 {
			out.Data[i] = 1
		}
	}
	return out
}
