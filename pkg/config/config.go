// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/editsurface/pkg/editor"
	"github.com/user/editsurface/pkg/export"
	"github.com/user/editsurface/pkg/playback"
	"github.com/user/editsurface/pkg/ports"
	"github.com/user/editsurface/pkg/scheduler"
	"github.com/user/editsurface/pkg/thumbnails"
	"github.com/user/editsurface/pkg/zoom"
)

// ErrInvalid is wrapped by every Validate error.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the full configuration for editsurface.
type Config struct {
	// Presentation
	TickIntervalMs     int `yaml:"tick_interval_ms"`
	ProgressIntervalMs int `yaml:"progress_interval_ms"`
	HistogramEvery     int `yaml:"histogram_every"`
	FallbackWidth      int `yaml:"fallback_width"`
	FallbackHeight     int `yaml:"fallback_height"`

	Zoom       ZoomConfig      `yaml:"zoom"`
	Thumbnails ThumbnailConfig `yaml:"thumbnails"`
	LUTDirs    []string        `yaml:"luts_dirs"`
	Export     ExportConfig    `yaml:"export"`

	// Histogram chart
	HistogramWidth      int    `yaml:"histogram_width"`
	HistogramHeight     int    `yaml:"histogram_height"`
	HistogramBackground string `yaml:"histogram_background"`

	LogLevel string `yaml:"log_level"`
}

// ZoomConfig bounds the zoom factor.
type ZoomConfig struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// ThumbnailConfig sizes the thumbnail pool.
type ThumbnailConfig struct {
	Size    int `yaml:"size"`
	Workers int `yaml:"workers"`
}

// ExportConfig controls still and frame-sequence exports.
type ExportConfig struct {
	// Format is "jpeg" or "png" for exported video frames.
	Format  string `yaml:"format"`
	Quality int    `yaml:"quality"`
	// FramesDir overrides the directory frames are written to.
	FramesDir string `yaml:"frames_dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		TickIntervalMs:     int(scheduler.DefaultInterval / time.Millisecond),
		ProgressIntervalMs: int(playback.DefaultProgressInterval / time.Millisecond),
		HistogramEvery:     scheduler.DefaultHistogramEvery,
		FallbackWidth:      editor.FallbackWidth,
		FallbackHeight:     editor.FallbackHeight,

		Zoom: ZoomConfig{
			Min:  zoom.DefaultMin,
			Max:  zoom.DefaultMax,
			Step: zoom.DefaultStep,
		},
		Thumbnails: ThumbnailConfig{
			Size:    thumbnails.DefaultSize,
			Workers: runtime.NumCPU(),
		},
		LUTDirs: []string{"resources/luts", "luts"},
		Export: ExportConfig{
			Format:  "jpeg",
			Quality: export.DefaultQuality,
		},

		HistogramWidth:      512,
		HistogramHeight:     200,
		HistogramBackground: "#1e1e1e",

		LogLevel: "info",
	}
}

// Load parses YAML over the defaults.
func Load(data []byte) (Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), err
	}
	return Load(data)
}

// Validate reports the first nonsensical value.
func (c Config) Validate() error {
	switch {
	case c.TickIntervalMs < 1:
		return fmt.Errorf("%w: tick_interval_ms must be positive", ErrInvalid)
	case c.ProgressIntervalMs < 1:
		return fmt.Errorf("%w: progress_interval_ms must be positive", ErrInvalid)
	case c.HistogramEvery < 1:
		return fmt.Errorf("%w: histogram_every must be positive", ErrInvalid)
	case c.FallbackWidth < 1 || c.FallbackHeight < 1:
		return fmt.Errorf("%w: fallback size %dx%d", ErrInvalid, c.FallbackWidth, c.FallbackHeight)
	case c.Zoom.Min <= 0 || c.Zoom.Max < c.Zoom.Min:
		return fmt.Errorf("%w: zoom bounds %g..%g", ErrInvalid, c.Zoom.Min, c.Zoom.Max)
	case c.Zoom.Step <= 1:
		return fmt.Errorf("%w: zoom step %g must exceed 1", ErrInvalid, c.Zoom.Step)
	case c.Thumbnails.Size < 1:
		return fmt.Errorf("%w: thumbnail size must be positive", ErrInvalid)
	case c.Thumbnails.Workers < 0:
		return fmt.Errorf("%w: thumbnail workers must not be negative", ErrInvalid)
	case c.Export.Quality < 1 || c.Export.Quality > 100:
		return fmt.Errorf("%w: export quality %d outside 1..100", ErrInvalid, c.Export.Quality)
	case c.HistogramWidth < 1 || c.HistogramHeight < 1:
		return fmt.Errorf("%w: histogram size %dx%d", ErrInvalid, c.HistogramWidth, c.HistogramHeight)
	}
	if _, err := c.FrameFormat(); err != nil {
		return err
	}
	return nil
}

// FrameFormat returns the image format of exported video frames.
func (c Config) FrameFormat() (ports.ImageFormat, error) {
	switch strings.ToLower(c.Export.Format) {
	case "", "jpeg", "jpg":
		return ports.FormatJPEG, nil
	case "png":
		return ports.FormatPNG, nil
	}
	return ports.FormatJPEG, fmt.Errorf("%w: export format %q", ErrInvalid, c.Export.Format)
}

// Level returns the configured log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(strings.ToLower(c.LogLevel))
}

// EditorOptions converts Config to editor.Options.
func (c Config) EditorOptions() editor.Options {
	return editor.Options{
		Scheduler: scheduler.Options{
			Interval:       time.Duration(c.TickIntervalMs) * time.Millisecond,
			HistogramEvery: c.HistogramEvery,
		},
		Playback: playback.Options{
			ProgressInterval: time.Duration(c.ProgressIntervalMs) * time.Millisecond,
		},
		Zoom: zoom.Options{
			Min:  c.Zoom.Min,
			Max:  c.Zoom.Max,
			Step: c.Zoom.Step,
		},
		Export: export.Options{
			Quality: c.Export.Quality,
		},
		Thumbnails: thumbnails.Options{
			Size:    c.Thumbnails.Size,
			Workers: c.Thumbnails.Workers,
		},
		LUTDirs:        c.LUTDirs,
		FallbackWidth:  c.FallbackWidth,
		FallbackHeight: c.FallbackHeight,
		ExportPoll:     time.Duration(c.ProgressIntervalMs) * time.Millisecond,
	}
}

// ParseColor parses a "#rrggbb" or "#rrggbbaa" string. Malformed input yields black.
func ParseColor(hex string) color.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.Black
	}
	var ch [4]uint8
	ch[3] = 0xff
	for i := 0; i < len(hex)/2; i++ {
		hi, ok1 := hexValue(hex[2*i])
		lo, ok2 := hexValue(hex[2*i+1])
		if !ok1 || !ok2 {
			return color.Black
		}
		ch[i] = hi<<4 | lo
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
