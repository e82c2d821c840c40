package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID    = "rail-gatherer"
	DefaultBaseURL       = "http://api.irishrail.ie/realtime/"
	DefaultPositionsPath = "realtime.asmx/getCurrentTrainsXML"
	DefaultFeedTimeout   = 30 * time.Second
	DefaultDuration      = 60 * time.Minute
	DefaultEvery         = 2
	DefaultUnit          = "m"
	DefaultSnapshotsDir  = "data/"
	DefaultFPS           = 2
	DefaultFrameWidth    = 1024
	DefaultFrameHeight   = 768
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 4
	DefaultMinConns      = 1
	DefaultServerPort    = 8080
	DefaultMetricsPath   = "/metrics"
	DefaultIrelandZoom   = 7
	DefaultCityZoom      = 10
	DefaultIrelandOutput = "results/ireland/"
	DefaultDublinOutput  = "results/dublin/"
	DefaultCorkOutput    = "results/cork/"
)

// Centre points for the known regions.
var (
	IrelandCentre = LatLon{53.4494762, -7.5029786}
	DublinCentre  = LatLon{53.350140, -6.266155}
	CorkCentre    = LatLon{51.903614, -8.468399}
)

// DefaultRegions returns the built-in region table.
func DefaultRegions() map[Region]RegionConfig {
	return map[Region]RegionConfig{
		RegionIreland: {OutputDir: DefaultIrelandOutput, Center: IrelandCentre, Zoom: DefaultIrelandZoom},
		RegionDublin:  {OutputDir: DefaultDublinOutput, Center: DublinCentre, Zoom: DefaultCityZoom},
		RegionCork:    {OutputDir: DefaultCorkOutput, Center: CorkCentre, Zoom: DefaultCityZoom},
	}
}

func (c *GathererConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}

	// Feed defaults
	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = DefaultBaseURL
	}
	if c.Feed.PositionsPath == "" {
		c.Feed.PositionsPath = DefaultPositionsPath
	}
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = DefaultFeedTimeout
	}

	// Schedule defaults
	if c.Schedule.EndTime.IsZero() && c.Schedule.Duration == 0 {
		c.Schedule.Duration = DefaultDuration
	}
	if c.Schedule.Every == nil {
		every := DefaultEvery
		c.Schedule.Every = &every
	}
	if c.Schedule.Unit == "" {
		c.Schedule.Unit = DefaultUnit
	}

	if c.Snapshots.Dir == "" {
		c.Snapshots.Dir = DefaultSnapshotsDir
	}

	// Render defaults
	if c.Render.FPS == 0 {
		c.Render.FPS = DefaultFPS
	}
	if c.Render.FrameWidth == 0 {
		c.Render.FrameWidth = DefaultFrameWidth
	}
	if c.Render.FrameHeight == 0 {
		c.Render.FrameHeight = DefaultFrameHeight
	}
	applyRegionDefaults(c)

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}
}

// applyRegionDefaults fills missing regions and missing fields of configured ones.
func applyRegionDefaults(c *GathererConfig) {
	if c.Render.Regions == nil {
		c.Render.Regions = make(map[Region]RegionConfig)
	}
	for region, def := range DefaultRegions() {
		rc, ok := c.Render.Regions[region]
		if !ok {
			c.Render.Regions[region] = def
			continue
		}
		if rc.OutputDir == "" {
			rc.OutputDir = def.OutputDir
		}
		if rc.Center == (LatLon{}) {
			rc.Center = def.Center
		}
		if rc.Zoom == 0 {
			rc.Zoom = def.Zoom
		}
		c.Render.Regions[region] = rc
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
