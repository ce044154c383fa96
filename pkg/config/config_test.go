package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/editsurface/pkg/ports"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.TickIntervalMs != 16 || cfg.ProgressIntervalMs != 100 || cfg.HistogramEvery != 10 {
		t.Errorf("unexpected presentation defaults: %+v", cfg)
	}
	if cfg.FallbackWidth != 800 || cfg.FallbackHeight != 600 {
		t.Errorf("expected 800x600 fallback, got %dx%d", cfg.FallbackWidth, cfg.FallbackHeight)
	}
	if cfg.Zoom != (ZoomConfig{Min: 0.1, Max: 10, Step: 1.2}) {
		t.Errorf("unexpected zoom defaults: %+v", cfg.Zoom)
	}
	if cfg.Thumbnails.Size != 200 || cfg.Thumbnails.Workers < 1 {
		t.Errorf("unexpected thumbnail defaults: %+v", cfg.Thumbnails)
	}
	if cfg.Export.Format != "jpeg" || cfg.Export.Quality != 90 {
		t.Errorf("unexpected export defaults: %+v", cfg.Export)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	cfg, err := Load([]byte(`
tick_interval_ms: 33
zoom:
  max: 4
luts_dirs: [/opt/luts]
export:
  format: png
log_level: debug
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TickIntervalMs != 33 {
		t.Errorf("expected 33, got %d", cfg.TickIntervalMs)
	}
	if cfg.Zoom.Max != 4 || cfg.Zoom.Min != 0.1 || cfg.Zoom.Step != 1.2 {
		t.Errorf("expected only max overridden, got %+v", cfg.Zoom)
	}
	if len(cfg.LUTDirs) != 1 || cfg.LUTDirs[0] != "/opt/luts" {
		t.Errorf("unexpected LUT dirs %v", cfg.LUTDirs)
	}
	if cfg.Export.Quality != 90 {
		t.Errorf("expected default quality kept, got %d", cfg.Export.Quality)
	}
	if f, err := cfg.FrameFormat(); err != nil || f != ports.FormatPNG {
		t.Errorf("expected PNG frames, got %v (%v)", f, err)
	}
	if cfg.Level() != ports.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.Level())
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load([]byte("zoom: [1, 2")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editsurface.yaml")
	if err := os.WriteFile(path, []byte("histogram_every: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.HistogramEvery != 5 {
		t.Errorf("expected 5, got %d", cfg.HistogramEvery)
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"tick", func(c *Config) { c.TickIntervalMs = 0 }},
		{"progress", func(c *Config) { c.ProgressIntervalMs = -1 }},
		{"histogram every", func(c *Config) { c.HistogramEvery = 0 }},
		{"fallback", func(c *Config) { c.FallbackHeight = 0 }},
		{"zoom min", func(c *Config) { c.Zoom.Min = 0 }},
		{"zoom max below min", func(c *Config) { c.Zoom.Max = 0.05 }},
		{"zoom step", func(c *Config) { c.Zoom.Step = 1 }},
		{"thumbnail size", func(c *Config) { c.Thumbnails.Size = 0 }},
		{"workers", func(c *Config) { c.Thumbnails.Workers = -2 }},
		{"quality", func(c *Config) { c.Export.Quality = 101 }},
		{"histogram size", func(c *Config) { c.HistogramWidth = 0 }},
		{"format", func(c *Config) { c.Export.Format = "gif" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestEditorOptions(t *testing.T) {
	cfg := Defaults()
	cfg.TickIntervalMs = 20
	cfg.Thumbnails.Workers = 3
	cfg.LUTDirs = []string{"a", "b"}

	opts := cfg.EditorOptions()

	if opts.Scheduler.Interval != 20*time.Millisecond || opts.Scheduler.HistogramEvery != 10 {
		t.Errorf("unexpected scheduler options %+v", opts.Scheduler)
	}
	if opts.Playback.ProgressInterval != 100*time.Millisecond || opts.ExportPoll != 100*time.Millisecond {
		t.Errorf("unexpected progress intervals %v / %v", opts.Playback.ProgressInterval, opts.ExportPoll)
	}
	if opts.Zoom.Step != 1.2 || opts.Export.Quality != 90 || opts.Thumbnails.Workers != 3 {
		t.Errorf("unexpected component options %+v", opts)
	}
	if len(opts.LUTDirs) != 2 || opts.FallbackWidth != 800 {
		t.Errorf("unexpected editor options %+v", opts)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
	}{
		{"#ff8000", color.NRGBA{255, 128, 0, 255}},
		{"1E1E1E", color.NRGBA{30, 30, 30, 255}},
		{"#00000080", color.NRGBA{0, 0, 0, 128}},
		{"", color.Black},
		{"#fff", color.Black},
		{"#gg0000", color.Black},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseColor(tt.in); got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
