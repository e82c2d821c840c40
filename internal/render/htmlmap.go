package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/rickgao/rail-data/internal/config"
	"github.com/rickgao/rail-data/internal/model"
)

// TitleLayout formats the timestamp shown on maps.
const TitleLayout = "2006-01-02 15:04:05.000000"

// Marker is one train on an HTML map.
type Marker struct {
	Code  string  `json:"code"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Popup string  `json:"popup"`
	Color string  `json:"color"`
}

type mapPage struct {
	Title    string
	Lat      float64
	Lon      float64
	Zoom     int
	Markers  []Marker
	Network  template.JS
	Stations template.JS
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
html, body, #map { height: 100%; margin: 0; }
#title { position: absolute; top: 10px; left: 50%; transform: translateX(-50%); z-index: 1000;
  background: white; padding: 4px 8px; font: 16px sans-serif; }
</style>
</head>
<body>
<div id="title">{{.Title}}</div>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.Lat}}, {{.Lon}}], {{.Zoom}});
var base = L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var overlays = {};
{{- if .Network}}
overlays["Rail network"] = L.geoJSON({{.Network}}, {style: {color: '#555555', weight: 2}}).addTo(map);
{{- end}}
{{- if .Stations}}
overlays["Rail stations"] = L.geoJSON({{.Stations}}, {
  pointToLayer: function (f, latlng) { return L.circleMarker(latlng, {radius: 3, color: '#000000'}); }
}).addTo(map);
{{- end}}
var trains = L.layerGroup().addTo(map);
var markers = {{.Markers}};
markers.forEach(function (m) {
  L.circleMarker([m.lat, m.lon], {radius: 8, color: m.color, fillColor: m.color, fillOpacity: 0.9})
    .bindPopup(m.popup).addTo(trains);
});
overlays["Trains"] = trains;
L.control.layers({"OpenStreetMap": base}, overlays).addTo(map);
</script>
</body>
</html>
`))

// Markers returns one marker per record at ts with a known position.
func Markers(ds *model.Dataset, ts time.Time, palette Palette) []Marker {
	var out []Marker
	for _, r := range ds.At(ts) {
		if !r.HasKnownPosition() {
			continue
		}
		lat, _ := r.Lat()
		lon, _ := r.Lon()
		out = append(out, Marker{
			Code:  r.TrainCode,
			Lat:   lat,
			Lon:   lon,
			Popup: r.TrainCode + ": " + r.Direction,
			Color: palette.Hex(r.TrainCode),
		})
	}
	if out == nil {
		out = []Marker{}
	}
	return out
}

// HTMLMap writes the Leaflet page for ts in the region's output directory and
// returns its path.
func (r *Renderer) HTMLMap(ds *model.Dataset, ts time.Time, region config.Region, palette Palette) (string, error) {
	rc, err := r.region(region)
	if err != nil {
		return "", err
	}

	page := mapPage{
		Title:   "Datetime: " + ts.Format(TitleLayout),
		Lat:     rc.Center.Lat(),
		Lon:     rc.Center.Lon(),
		Zoom:    rc.Zoom,
		Markers: Markers(ds, ts, palette),
	}
	if r.network != nil {
		page.Network = template.JS(r.network.Raw)
	}
	if r.stations != nil {
		page.Stations = template.JS(r.stations.Raw)
	}

	var buf bytes.Buffer
	if err := mapTemplate.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("render map: %w", err)
	}

	if err := os.MkdirAll(rc.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(rc.OutputDir, artifactName(ts, ".html"))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write map: %w", err)
	}
	return path, nil
}
