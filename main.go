package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"natcolor/aoi"
	"natcolor/composite"
	"natcolor/export"
	"natcolor/raster"
	"natcolor/scene"
	"natcolor/stac"
	"natcolor/util"

	"github.com/davecgh/go-spew/spew"
	"github.com/eidolon/wordwrap"
	"github.com/paulmach/orb"

	log "github.com/sirupsen/logrus"
)

var (
	aoiSpec    = flag.String("aoi", "", "Area of interest: inline GeoJSON, WKT, or a GeoJSON file path")
	dateSpec   = flag.String("date", "", "Target date (YYYY-MM-DD); the newest acceptable scene on or before it is used")
	outPath    = flag.String("out", "", "Output Cloud-Optimized GeoTIFF path")
	maxCloud   = flag.Float64("max-cloud", util.EnvOrDefaultFloat("NATCOLOR_MAX_CLOUD", 20), "Maximum cloud cover percent, applied to scene metadata and the pixel mask")
	pansharpen = flag.Bool("pansharpen", false, "Brovey pan-sharpen scenes that carry a panchromatic band")
	webpOut    = flag.Bool("webp", false, "Also write an 8-bit WebP preview alongside the COG")
	token      = flag.String("token", "", "Planetary Computer SAS token (overrides PC_SAS_TOKEN)")
	radius     = flag.Float64("radius", 0, "Buffer radius in meters, required for point AOIs")
	verbose    = flag.Bool("v", false, "Debug logging")
)

func usage() {
	w := flag.CommandLine.Output()
	wrap := wordwrap.Wrapper(76, false)
	fmt.Fprintln(w, wrap("natcolor fetches the most recent sufficiently cloud-free natural-color "+
		"scene over an area of interest from the Planetary Computer STAC catalog "+
		"(Sentinel-2 first, Landsat as fallback), masks clouds, and exports a "+
		"georeferenced Cloud-Optimized GeoTIFF plus an optional WebP preview."))
	fmt.Fprintln(w)
	flag.PrintDefaults()
}

func topLevelContext() context.Context {
	ctx, cancelf := context.WithCancel(context.Background())
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigs
		log.Warnf("Caught signal %q, shutting down.", sig)
		cancelf()
	}()
	return ctx
}

func run(ctx context.Context) error {
	date, err := time.Parse("2006-01-02", *dateSpec)
	if err != nil {
		return fmt.Errorf("bad -date %q: %w", *dateSpec, err)
	}
	geom, err := aoi.Load(*aoiSpec, *radius)
	if err != nil {
		return err
	}

	tok := *token
	if tok == "" {
		tok = util.EnvOrDefault("PC_SAS_TOKEN", "")
	}
	client, err := stac.NewClient(tok)
	if err != nil {
		return err
	}

	log.Debugf("Run config: %s", spew.Sdump(struct {
		Date       time.Time
		Bound      [4]float64
		MaxCloud   float64
		Pansharpen bool
		Preview    bool
	}{date, boundCoords(geom), *maxCloud, *pansharpen, *webpOut}))

	sel := &scene.Selector{
		Catalog:     client,
		Masks:       scene.GridMaskLoader{},
		Collections: []scene.Collection{scene.SentinelL2A, scene.LandsatC2L2},
		MaxCloud:    *maxCloud,
	}
	picked, err := sel.Select(ctx, geom, date)
	if err != nil {
		return err
	}

	coll := picked.Collection
	sharpen := *pansharpen && coll.PanAsset != ""
	if *pansharpen && !sharpen {
		log.Warnf("Collection %s has no panchromatic band, skipping pan-sharpen", coll.ID)
	}
	res := coll.Resolution
	if sharpen {
		res = coll.PanResolution
	}
	target := raster.TargetFor(geom.Bound(), res)

	keys := []string{coll.Red, coll.Green, coll.Blue}
	if sharpen {
		keys = append(keys, coll.PanAsset)
	}
	hrefs := make([]string, len(keys))
	for i, k := range keys {
		if hrefs[i], err = scene.AssetHref(picked.Item, k); err != nil {
			return err
		}
	}
	log.Infof("Fetching %d bands at %.0f m over %dx%d pixels", len(hrefs), res, target.W, target.H)
	grids, err := raster.FetchBands(ctx, hrefs, target, raster.Bilinear)
	if err != nil {
		return err
	}

	img, err := composite.Stack(grids[0], grids[1], grids[2])
	if err != nil {
		return err
	}
	if err := img.ApplyMask(picked.Mask.Combined().ResampleTo(target)); err != nil {
		return err
	}
	if sharpen {
		if err := img.Pansharpen(grids[3]); err != nil {
			return err
		}
	}

	if err := export.WriteCOG(img, *outPath); err != nil {
		return err
	}
	log.Infof("COG saved to %s", *outPath)

	if *webpOut {
		p := export.PreviewPath(*outPath)
		if err := export.WritePreview(img, p); err != nil {
			return err
		}
		log.Infof("WebP preview saved to %s", p)
	}
	return nil
}

func boundCoords(g orb.Geometry) [4]float64 {
	b := g.Bound()
	return [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if *aoiSpec == "" || *dateSpec == "" || *outPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx := topLevelContext()
	if err := run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
