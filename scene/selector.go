package scene

import (
	"context"
	"errors"
	"time"

	"natcolor/stac"

	"github.com/paulmach/orb"

	log "github.com/sirupsen/logrus"
)

// ErrNoSuitableScene is returned when every candidate in every
// collection was rejected by the cloud filters.
var ErrNoSuitableScene = errors.New("no scene meets the cloud criteria")

// Catalog searches one collection of the imagery catalog.
type Catalog interface {
	Search(ctx context.Context, req *stac.SearchRequest) (*stac.SearchResponse, error)
}

// MaskLoader derives the per-pixel cloud mask of a candidate scene over
// the AOI.
type MaskLoader interface {
	Load(ctx context.Context, item *stac.Item, c Collection, geom orb.Geometry) (*Mask, error)
}

// Selection is an accepted scene together with its cloud mask.
type Selection struct {
	Item       *stac.Item
	Collection Collection
	Mask       *Mask
}

type Selector struct {
	Catalog     Catalog
	Masks       MaskLoader
	Collections []Collection

	// MaxCloud is the cloud-cover threshold in percent. Candidates at
	// or below it pass, both for reported metadata and for the pixel
	// mask fraction.
	MaxCloud float64
}

// Select walks the collections in priority order and their candidates
// newest-first, returning the first scene whose reported and
// pixel-derived cloud cover are both within the threshold. A collection
// with no results is logged and the next one tried; any other catalog
// or download failure aborts.
func (s *Selector) Select(ctx context.Context, geom orb.Geometry, date time.Time) (*Selection, error) {
	for _, coll := range s.Collections {
		resp, err := s.Catalog.Search(ctx, stac.RequestCollection(coll.ID, geom, date))
		if errors.Is(err, stac.ErrNoResults) {
			log.Infof("Collection %s: no scenes in window", coll.ID)
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, item := range resp.Features {
			// Reported metadata first; rejecting here avoids the mask
			// download. Missing metadata counts as fully cloudy.
			reported := 100.0
			if item.Properties != nil && item.Properties.CloudCover != nil {
				reported = *item.Properties.CloudCover
			}
			if reported > s.MaxCloud {
				log.Debugf("Scene %s: reported cloud cover %.1f%% over threshold", item.ID, reported)
				continue
			}

			mask, err := s.Masks.Load(ctx, item, coll, geom)
			if err != nil {
				return nil, err
			}
			pct := mask.Fraction() * 100
			if pct > s.MaxCloud {
				log.Infof("Scene %s: %.1f%% of AOI pixels cloudy, over threshold", item.ID, pct)
				continue
			}

			log.Infof("Selected %s scene %s (%s, %.1f%% of AOI cloudy)",
				coll.ID, item.ID, acquired(item), pct)
			return &Selection{Item: item, Collection: coll, Mask: mask}, nil
		}
	}
	return nil, ErrNoSuitableScene
}

func acquired(item *stac.Item) string {
	if item.Properties == nil {
		return "unknown date"
	}
	return item.Properties.Datetime.Format("2006-01-02")
}
