package config

import "time"

// GathererConfig is the root configuration shared by the gatherer and renderer.
type GathererConfig struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Feed      FeedConfig      `yaml:"feed"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Snapshots SnapshotsConfig `yaml:"snapshots"`
	Render    RenderConfig    `yaml:"render"`
	Database  DatabaseConfig  `yaml:"database"`
	Export    ExportConfig    `yaml:"export"`
	Server    ServerConfig    `yaml:"server"`
}

// InstanceConfig identifies this gatherer.
type InstanceConfig struct {
	ID string `yaml:"id" validate:"required"`
}

// FeedConfig holds Irish Rail API settings.
type FeedConfig struct {
	BaseURL       string        `yaml:"base_url" validate:"required,url"` // Also the XML namespace
	PositionsPath string        `yaml:"positions_path" validate:"required"`
	Timeout       time.Duration `yaml:"timeout" validate:"gte=0"`
}

// PositionsURL returns the full endpoint for current train positions.
func (f FeedConfig) PositionsURL() string {
	return f.BaseURL + f.PositionsPath
}

// ScheduleConfig holds the collection window. Exactly one of EndTime and
// Duration bounds the window.
type ScheduleConfig struct {
	EndTime  time.Time     `yaml:"end_time"`
	Duration time.Duration `yaml:"duration" validate:"gte=0"`
	Every    *int          `yaml:"every" validate:"required,gt=0"` // Unset = default, 0 is rejected
	Unit     string        `yaml:"unit" validate:"oneof=s m h d seconds minutes hours days"`
}

// Interval returns the number of units between fires, or 0 when unset.
func (s ScheduleConfig) Interval() int {
	if s.Every == nil {
		return 0
	}
	return *s.Every
}

// End resolves the window end for a run starting at start.
func (s ScheduleConfig) End(start time.Time) time.Time {
	if !s.EndTime.IsZero() {
		return s.EndTime
	}
	return start.Add(s.Duration)
}

// SnapshotsConfig holds the snapshot directory.
type SnapshotsConfig struct {
	Dir string `yaml:"dir" validate:"required"`
}

// RenderConfig holds downstream map and animation settings.
type RenderConfig struct {
	Enabled      bool                    `yaml:"enabled"`
	RailNetwork  string                  `yaml:"rail_network"`  // GeoJSON file, optional
	RailStations string                  `yaml:"rail_stations"` // GeoJSON file, optional
	FPS          int                     `yaml:"fps" validate:"gte=0"`
	FrameWidth   int                     `yaml:"frame_width" validate:"gte=0"`
	FrameHeight  int                     `yaml:"frame_height" validate:"gte=0"`
	Regions      map[Region]RegionConfig `yaml:"regions" validate:"dive"`
}

// Region is an enumerated map focus.
type Region string

// Known regions.
const (
	RegionIreland Region = "ireland"
	RegionDublin  Region = "dublin"
	RegionCork    Region = "cork"
)

// Regions lists every known region in render order.
var Regions = []Region{RegionIreland, RegionDublin, RegionCork}

// Valid reports whether r is a known region tag.
func (r Region) Valid() bool {
	switch r {
	case RegionIreland, RegionDublin, RegionCork:
		return true
	}
	return false
}

// RegionConfig is the plain record a region resolves to.
type RegionConfig struct {
	OutputDir string `yaml:"output_dir" validate:"required"`
	Center    LatLon `yaml:"center"`
	Zoom      int    `yaml:"zoom" validate:"gte=1,lte=18"`
}

// LatLon is a WGS84 coordinate pair, written as [lat, lon] in YAML.
type LatLon [2]float64

// Lat returns the latitude.
func (p LatLon) Lat() float64 { return p[0] }

// Lon returns the longitude.
func (p LatLon) Lon() float64 { return p[1] }

// DatabaseConfig holds the optional PostgreSQL position store.
type DatabaseConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ExportConfig holds optional feed exports.
type ExportConfig struct {
	GTFSRTPath string `yaml:"gtfsrt_path"` // VehiclePositions .pb file, empty = disabled
}

// ServerConfig holds the live/health HTTP server settings.
type ServerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Port        int    `yaml:"port"`
	MetricsPath string `yaml:"metrics_path"`
}
