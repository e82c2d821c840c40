package render

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/fogleman/gg"

	"github.com/rickgao/rail-data/internal/config"
	"github.com/rickgao/rail-data/internal/model"
)

const (
	tileSize    = 256
	trainRadius = 7
)

// Frame colours.
var (
	background = color.RGBA{0xf2, 0xef, 0xe9, 0xff}
	networkInk = color.RGBA{0x55, 0x55, 0x55, 0xff}
	stationInk = color.RGBA{0x00, 0x00, 0x00, 0xff}
	outlineInk = color.RGBA{0x33, 0x33, 0x33, 0xff}
)

// projection maps WGS84 coordinates onto a canvas centred on a point at a
// Web-Mercator zoom level.
type projection struct {
	cx, cy float64 // world pixel coordinates of the canvas centre
	scale  float64
	w, h   int
}

func newProjection(center config.LatLon, zoom, w, h int) projection {
	p := projection{scale: tileSize * math.Exp2(float64(zoom)), w: w, h: h}
	p.cx, p.cy = p.world(center.Lat(), center.Lon())
	return p
}

func (p projection) world(lat, lon float64) (float64, float64) {
	x := (lon + 180) / 360 * p.scale
	sin := math.Sin(lat * math.Pi / 180)
	y := (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * p.scale
	return x, y
}

// Project returns canvas coordinates for lat, lon.
func (p projection) Project(lat, lon float64) (float64, float64) {
	x, y := p.world(lat, lon)
	return x - p.cx + float64(p.w)/2, y - p.cy + float64(p.h)/2
}

// Point returns the nearest canvas pixel to lat, lon.
func (p projection) Point(lat, lon float64) image.Point {
	x, y := p.Project(lat, lon)
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}

// Frame draws the region at ts: overlays if loaded, then one disc per train.
func (r *Renderer) Frame(ds *model.Dataset, ts time.Time, region config.Region, palette Palette) (image.Image, error) {
	rc, err := r.region(region)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(r.width, r.height)
	dc.SetColor(background)
	dc.Clear()

	proj := newProjection(rc.Center, rc.Zoom, r.width, r.height)

	if r.network != nil {
		dc.SetColor(networkInk)
		dc.SetLineWidth(1.5)
		for _, line := range r.network.Lines {
			for i, pt := range line {
				x, y := proj.Project(pt.Lat(), pt.Lon())
				if i == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.Stroke()
		}
	}
	if r.stations != nil {
		dc.SetColor(stationInk)
		for _, pt := range r.stations.Points {
			x, y := proj.Project(pt.Lat(), pt.Lon())
			dc.DrawCircle(x, y, 2)
			dc.Fill()
		}
	}

	for _, m := range Markers(ds, ts, palette) {
		x, y := proj.Project(m.Lat, m.Lon)
		dc.DrawCircle(x, y, trainRadius)
		dc.SetColor(palette.Color(m.Code))
		dc.FillPreserve()
		dc.SetColor(outlineInk)
		dc.SetLineWidth(1)
		dc.Stroke()
	}
	return dc.Image(), nil
}
