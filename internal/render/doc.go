// Package render turns a consolidated dataset into per-region maps and an
// animation.
//
// For each poll timestamp a region gets an interactive Leaflet page
// (trains_<ts>.html) and a static Web-Mercator frame (pngs/trains_<ts>.png).
// The frames are then assembled into pngs/gif/trains.gif. Train colours come
// from a palette built once over the whole dataset so a train keeps its colour
// across frames.
package render
