package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-gatherer
feed:
  base_url: http://api.irishrail.ie/realtime/
  positions_path: realtime.asmx/getCurrentTrainsXML
  timeout: 5s
schedule:
  duration: 1h
  every: 2
  unit: m
snapshots:
  dir: data/
render:
  regions:
    dublin:
      output_dir: out/dublin/
      center: [53.35, -6.26]
      zoom: 11
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-gatherer" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-gatherer")
	}
	if got, want := cfg.Feed.PositionsURL(), "http://api.irishrail.ie/realtime/realtime.asmx/getCurrentTrainsXML"; got != want {
		t.Errorf("Feed.PositionsURL() = %q, want %q", got, want)
	}
	if cfg.Feed.Timeout != 5*time.Second {
		t.Errorf("Feed.Timeout = %v, want 5s", cfg.Feed.Timeout)
	}
	if cfg.Schedule.Duration != time.Hour {
		t.Errorf("Schedule.Duration = %v, want 1h", cfg.Schedule.Duration)
	}
	dublin := cfg.Render.Regions[RegionDublin]
	if dublin.Center != (LatLon{53.35, -6.26}) {
		t.Errorf("dublin.Center = %v, want [53.35 -6.26]", dublin.Center)
	}
	if dublin.Zoom != 11 {
		t.Errorf("dublin.Zoom = %d, want 11", dublin.Zoom)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
database:
  enabled: true
  postgres:
    host: localhost
    name: rail
    user: rail
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Postgres.Password != "secret123" {
		t.Errorf("Database.Postgres.Password = %q, want %q", cfg.Database.Postgres.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "instance:\n  id: test-gatherer\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Feed.BaseURL != DefaultBaseURL {
		t.Errorf("Feed.BaseURL = %q, want default %q", cfg.Feed.BaseURL, DefaultBaseURL)
	}
	if cfg.Feed.Timeout != DefaultFeedTimeout {
		t.Errorf("Feed.Timeout = %v, want default %v", cfg.Feed.Timeout, DefaultFeedTimeout)
	}
	if cfg.Schedule.Duration != DefaultDuration {
		t.Errorf("Schedule.Duration = %v, want default %v", cfg.Schedule.Duration, DefaultDuration)
	}
	if cfg.Schedule.Interval() != DefaultEvery || cfg.Schedule.Unit != DefaultUnit {
		t.Errorf("Schedule = %d%s, want default %d%s", cfg.Schedule.Interval(), cfg.Schedule.Unit, DefaultEvery, DefaultUnit)
	}
	if cfg.Snapshots.Dir != DefaultSnapshotsDir {
		t.Errorf("Snapshots.Dir = %q, want default %q", cfg.Snapshots.Dir, DefaultSnapshotsDir)
	}
	if len(cfg.Render.Regions) != len(Regions) {
		t.Errorf("len(Render.Regions) = %d, want %d", len(cfg.Render.Regions), len(Regions))
	}
	if cork := cfg.Render.Regions[RegionCork]; cork.Center != CorkCentre || cork.Zoom != DefaultCityZoom {
		t.Errorf("cork = %+v, want centre %v zoom %d", cork, CorkCentre, DefaultCityZoom)
	}
	if cfg.Database.Postgres.Port != DefaultDBPort {
		t.Errorf("Database.Postgres.Port = %d, want default %d", cfg.Database.Postgres.Port, DefaultDBPort)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultServerPort)
	}
}

func TestLoadWithDefaults_EndTimeKeepsDurationUnset(t *testing.T) {
	path := writeTempFile(t, "schedule:\n  end_time: 2024-01-15T13:00:00Z\n")

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if cfg.Schedule.Duration != 0 {
		t.Errorf("Schedule.Duration = %v, want 0 when end_time is set", cfg.Schedule.Duration)
	}

	want := time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC)
	if got := cfg.Schedule.End(want.Add(-time.Hour)); !got.Equal(want) {
		t.Errorf("Schedule.End() = %v, want %v", got, want)
	}
}

func TestLoadAndValidate_Every(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    int
		wantErr string
	}{
		{name: "unset uses default", yaml: "schedule:\n  unit: m\n", want: DefaultEvery},
		{name: "explicit value", yaml: "schedule:\n  every: 5\n", want: 5},
		{name: "explicit zero rejected", yaml: "schedule:\n  every: 0\n", wantErr: "validate config: schedule.every must be > 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadAndValidate(writeTempFile(t, tt.yaml))
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Errorf("LoadAndValidate() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadAndValidate failed: %v", err)
			}
			if got := cfg.Schedule.Interval(); got != tt.want {
				t.Errorf("Schedule.Interval() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScheduleEnd_FromDuration(t *testing.T) {
	start := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	s := ScheduleConfig{Duration: 30 * time.Minute}
	if got, want := s.End(start), start.Add(30*time.Minute); !got.Equal(want) {
		t.Errorf("End() = %v, want %v", got, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.HasPrefix(err.Error(), "read config file:") {
		t.Errorf("Load() error = %v, want read config file error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GathererConfig)
		wantErr string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*GathererConfig) {},
			wantErr: "",
		},
		{
			name:    "invalid unit",
			mutate:  func(c *GathererConfig) { c.Schedule.Unit = "w" },
			wantErr: `schedule.unit must be one of [s m h d seconds minutes hours days], got "w"`,
		},
		{
			name:    "non-positive every",
			mutate:  func(c *GathererConfig) { c.Schedule.Every = intPtr(-1) },
			wantErr: "schedule.every must be > 0",
		},
		{
			name:    "upper case unit",
			mutate:  func(c *GathererConfig) { c.Schedule.Unit = "S" },
			wantErr: `schedule.unit must be one of [s m h d seconds minutes hours days], got "S"`,
		},
		{
			name:    "bad base url",
			mutate:  func(c *GathererConfig) { c.Feed.BaseURL = "not a url" },
			wantErr: `feed.base_url must be a valid URL, got "not a url"`,
		},
		{
			name:    "missing snapshot dir",
			mutate:  func(c *GathererConfig) { c.Snapshots.Dir = "" },
			wantErr: "snapshots.dir is required",
		},
		{
			name: "end time and duration",
			mutate: func(c *GathererConfig) {
				c.Schedule.EndTime = time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC)
			},
			wantErr: "schedule.end_time and schedule.duration are mutually exclusive",
		},
		{
			name: "unknown region",
			mutate: func(c *GathererConfig) {
				c.Render.Regions["galway"] = RegionConfig{OutputDir: "results/galway/", Zoom: 10}
			},
			wantErr: `render.regions: unknown region "galway"`,
		},
		{
			name: "region zoom out of range",
			mutate: func(c *GathererConfig) {
				rc := c.Render.Regions[RegionCork]
				rc.Zoom = 40
				c.Render.Regions[RegionCork] = rc
			},
			wantErr: "render.regions[cork].zoom must be <= 18",
		},
		{
			name:    "database enabled without host",
			mutate:  func(c *GathererConfig) { c.Database.Enabled = true },
			wantErr: "database.postgres.host is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *GathererConfig) {
				c.Database.Enabled = true
				c.Database.Postgres = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "database.postgres.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name: "server port out of range",
			mutate: func(c *GathererConfig) {
				c.Server.Enabled = true
				c.Server.Port = 70000
			},
			wantErr: "server.port must be between 1 and 65535, got 70000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestRegionValid(t *testing.T) {
	for _, r := range Regions {
		if !r.Valid() {
			t.Errorf("Region(%q).Valid() = false, want true", r)
		}
	}
	if Region("galway").Valid() {
		t.Error(`Region("galway").Valid() = true, want false`)
	}
}

func intPtr(v int) *int { return &v }

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
