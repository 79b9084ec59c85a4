package stac

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	// How far back from the target date to search.
	SearchWindow = 14 * 24 * time.Hour

	// Most candidates to consider per collection.
	SearchLimit = 40
)

// RequestCollection builds a search for scenes of a single collection
// intersecting g, acquired on or before end, newest first.
func RequestCollection(collection string, g orb.Geometry, end time.Time) *SearchRequest {
	start := end.Add(-SearchWindow)
	return &SearchRequest{
		Collections: []string{collection},
		Intersects:  geojson.NewGeometry(g),
		Datetime:    start.Format("2006-01-02") + "/" + end.Format("2006-01-02"),
		SortBy:      []SortBy{{Field: "datetime", Direction: "desc"}},
		Limit:       SearchLimit,
	}
}
