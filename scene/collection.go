// Package scene selects the newest sufficiently cloud-free scene from a
// prioritized chain of catalog collections.
package scene

import (
	"fmt"
	"math"

	"natcolor/stac"
)

// Collection describes one imagery collection and how to read its bands
// and per-pixel quality information.
type Collection struct {
	ID string

	// Asset keys for the red, green and blue reflectance bands.
	Red, Green, Blue string

	// PanAsset is the panchromatic band key, empty when the platform
	// carries none.
	PanAsset string

	// MaskAsset is the classification/QA band used for cloud masking.
	MaskAsset string

	// Resolution is the nominal ground resolution of the RGB bands in
	// meters; PanResolution that of the panchromatic band.
	Resolution    float64
	PanResolution float64

	// Cloudy reports whether a mask-band pixel value means cloud,
	// shadow, or invalid data.
	Cloudy func(v float64) bool
}

// SentinelL2A is Sentinel-2 Level-2A: 10 m visible bands, SCL scene
// classification. The preferred source.
var SentinelL2A = Collection{
	ID:         "sentinel-2-l2a",
	Red:        "B04",
	Green:      "B03",
	Blue:       "B02",
	MaskAsset:  "SCL",
	Resolution: 10,
	Cloudy:     sclCloudy,
}

// LandsatC2L2 is Landsat Collection 2 Level-2: 30 m visible bands, 15 m
// panchromatic, QA_PIXEL quality bits. The fallback source.
var LandsatC2L2 = Collection{
	ID:            "landsat-c2-l2",
	Red:           "red",
	Green:         "green",
	Blue:          "blue",
	PanAsset:      "pan",
	MaskAsset:     "QA_PIXEL",
	Resolution:    30,
	PanResolution: 15,
	Cloudy:        qaCloudy,
}

// SCL classes: 0 no data, 8 cloud medium probability, 9 cloud high
// probability, 10 thin cirrus, 11 snow/ice.
func sclCloudy(v float64) bool {
	if math.IsNaN(v) {
		return true
	}
	c := int(v)
	return c == 0 || (c >= 8 && c <= 11)
}

// QA_PIXEL bits: 0 fill, 3 cloud, 4 cloud shadow.
func qaCloudy(v float64) bool {
	if math.IsNaN(v) {
		return true
	}
	b := uint16(v)
	return b&(1<<0|1<<3|1<<4) != 0
}

// AssetHref looks up a band asset on a catalog item.
func AssetHref(item *stac.Item, key string) (string, error) {
	a, ok := item.Assets[key]
	if !ok || a.Href == "" {
		return "", fmt.Errorf("scene %s has no %q asset", item.ID, key)
	}
	return a.Href, nil
}
