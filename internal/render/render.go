package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rickgao/rail-data/internal/config"
	"github.com/rickgao/rail-data/internal/model"
	"github.com/rickgao/rail-data/internal/snapshot"
)

// Output layout below a region's output directory.
const (
	PNGDir  = "pngs"
	GIFDir  = "gif"
	GIFName = "trains.gif"
)

// Renderer draws datasets for the configured regions.
type Renderer struct {
	regions  map[config.Region]config.RegionConfig
	width    int
	height   int
	fps      int
	network  *Layer
	stations *Layer
	logger   *slog.Logger
}

// NewRenderer creates a Renderer from cfg, loading any GeoJSON overlays.
func NewRenderer(cfg config.RenderConfig, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	network, err := LoadLayer("rail_network", cfg.RailNetwork)
	if err != nil {
		return nil, err
	}
	stations, err := LoadLayer("rail_stations", cfg.RailStations)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		regions:  cfg.Regions,
		width:    cfg.FrameWidth,
		height:   cfg.FrameHeight,
		fps:      cfg.FPS,
		network:  network,
		stations: stations,
		logger:   logger,
	}
	if r.regions == nil {
		r.regions = config.DefaultRegions()
	}
	if r.width <= 0 {
		r.width = config.DefaultFrameWidth
	}
	if r.height <= 0 {
		r.height = config.DefaultFrameHeight
	}
	return r, nil
}

func (r *Renderer) region(region config.Region) (config.RegionConfig, error) {
	rc, ok := r.regions[region]
	if !ok {
		return config.RegionConfig{}, fmt.Errorf("unknown region %q", region)
	}
	return rc, nil
}

// artifactName names a per-timestamp output the same way snapshots are named.
func artifactName(ts time.Time, ext string) string {
	return snapshot.FilePrefix + ts.UTC().Format(snapshot.FileTimeLayout) + ext
}

// Result lists what RenderRegion wrote.
type Result struct {
	Region  config.Region
	Maps    []string
	Frames  []string
	GIF     string
	Dropped int // Frames left out of the GIF for having a minority size
}

// RenderRegion writes a map and a frame per timestamp in ds, then the GIF.
// Records at unknown positions are never drawn.
func (r *Renderer) RenderRegion(ds *model.Dataset, region config.Region, palette Palette) (*Result, error) {
	rc, err := r.region(region)
	if err != nil {
		return nil, err
	}

	res := &Result{Region: region}
	pngDir := filepath.Join(rc.OutputDir, PNGDir)
	if err := os.MkdirAll(pngDir, 0o755); err != nil {
		return nil, fmt.Errorf("create png dir: %w", err)
	}

	var frames []image.Image
	for _, ts := range ds.Timestamps() {
		path, err := r.HTMLMap(ds, ts, region, palette)
		if err != nil {
			return res, err
		}
		res.Maps = append(res.Maps, path)

		frame, err := r.Frame(ds, ts, region, palette)
		if err != nil {
			return res, err
		}
		framePath := filepath.Join(pngDir, artifactName(ts, ".png"))
		if err := writePNG(framePath, frame); err != nil {
			return res, err
		}
		res.Frames = append(res.Frames, framePath)
		frames = append(frames, frame)
	}

	g, err := Assemble(frames, r.fps)
	if errors.Is(err, ErrNoFrames) {
		r.logger.Warn("nothing to animate", "region", region)
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Dropped = len(frames) - len(g.Image)

	res.GIF = filepath.Join(pngDir, GIFDir, GIFName)
	if err := WriteGIF(res.GIF, g); err != nil {
		return res, err
	}

	r.logger.Info("region rendered",
		"region", region,
		"maps", len(res.Maps),
		"frames", len(g.Image),
		"dropped", res.Dropped,
		"gif", res.GIF,
	)
	return res, nil
}

// RenderAll renders every configured region, in the standard order, with one
// palette built over the whole dataset. Rows at 0,0 are removed first.
func (r *Renderer) RenderAll(ds *model.Dataset) ([]*Result, error) {
	known := ds.KnownPositions()
	known.SortByTime()
	palette := NewPalette(known.TrainCodes())

	var results []*Result
	for _, region := range config.Regions {
		if _, ok := r.regions[region]; !ok {
			continue
		}
		res, err := r.RenderRegion(known, region, palette)
		if err != nil {
			return results, fmt.Errorf("render %s: %w", region, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode frame: %w", err)
	}
	return f.Close()
}
