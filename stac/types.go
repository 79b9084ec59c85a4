package stac

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

type SortBy struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// SearchRequest is the body of a STAC API /search POST.
type SearchRequest struct {
	Collections []string          `json:"collections"`
	Intersects  *geojson.Geometry `json:"intersects"`
	Datetime    string            `json:"datetime"`
	SortBy      []SortBy          `json:"sortby"`
	Limit       int               `json:"limit"`
}

type Properties struct {
	Datetime time.Time `json:"datetime"`
	// CloudCover is the scene-wide cloud percentage reported by the
	// provider. Nil when the collection doesn't report one.
	CloudCover *float64 `json:"eo:cloud_cover"`
	Platform   string   `json:"platform"`
}

type Asset struct {
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

type Item struct {
	ID         string            `json:"id"`
	Collection string            `json:"collection"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties *Properties       `json:"properties"`
	Assets     map[string]*Asset `json:"assets"`
}

type SearchResponse struct {
	Features []*Item `json:"features"`
}
