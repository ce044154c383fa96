// Package histogram turns backend channel histograms into chart bars.
package histogram

import (
	"image/color"

	"github.com/user/editsurface/pkg/ports"
)

// Bins per channel.
const Bins = 256

// Channel colors. Luminance is translucent so the color channels read over it.
var (
	LuminanceColor = color.NRGBA{R: 200, G: 200, B: 200, A: 96}
	RedColor       = color.NRGBA{R: 255, G: 64, B: 64, A: 160}
	GreenColor     = color.NRGBA{R: 64, G: 220, B: 64, A: 160}
	BlueColor      = color.NRGBA{R: 64, G: 128, B: 255, A: 160}
)

// drawOrder is the fixed stacking order of the chart.
var drawOrder = []struct {
	channel int
	color   color.NRGBA
}{
	{ports.ChannelLuminance, LuminanceColor},
	{ports.ChannelRed, RedColor},
	{ports.ChannelGreen, GreenColor},
	{ports.ChannelBlue, BlueColor},
}

// Surface is the part of the render target the aggregator needs.
type Surface interface {
	Handle() ports.SurfaceHandle
	Usable() bool
}

// Media reports whether anything is loaded.
type Media interface {
	HasMedia() bool
}

// Aggregator pulls a snapshot on each trigger and redraws the view.
type Aggregator struct {
	backend ports.Backend
	surface Surface
	media   Media
	view    ports.HistogramView
	logger  ports.Logger

	deferred bool
	failing  bool
}

// New creates an Aggregator drawing into view.
func New(backend ports.Backend, surface Surface, media Media, view ports.HistogramView, logger ports.Logger) *Aggregator {
	return &Aggregator{
		backend: backend,
		surface: surface,
		media:   media,
		view:    view,
		logger:  logger.WithComponent("histogram"),
	}
}

// Trigger recomputes the chart from a fresh backend snapshot.
func (a *Aggregator) Trigger() {
	if a.view == nil {
		return
	}
	if a.media == nil || !a.media.HasMedia() || !a.surface.Usable() {
		a.deferred = false
		a.view.Clear()
		return
	}

	snap, err := a.backend.Histogram(a.surface.Handle())
	if err != nil {
		if !a.failing {
			a.logger.Warn("Histogram unavailable: %v", err)
		}
		a.failing = true
		a.deferred = false
		a.view.Clear()
		return
	}
	a.failing = false

	w, h := a.view.Size()
	if w <= 0 || h <= 0 {
		a.deferred = true
		a.logger.Debug("Histogram view not laid out, deferring draw")
		return
	}
	a.deferred = false

	bars := Bars(snap, float64(w), float64(h))
	if len(bars) == 0 {
		a.view.Clear()
		return
	}
	a.view.Present(bars)
}

// LayoutChanged retries a draw deferred for lack of a laid out view.
func (a *Aggregator) LayoutChanged() {
	if !a.deferred {
		return
	}
	w, h := a.view.Size()
	if w <= 0 || h <= 0 {
		return
	}
	a.Trigger()
}

// Deferred reports whether a draw is waiting for layout.
func (a *Aggregator) Deferred() bool {
	return a.deferred
}

// MaxValue returns the largest bin over all channels.
func MaxValue(snap ports.HistogramSnapshot) uint32 {
	var max uint32
	for c := range snap {
		for _, v := range snap[c] {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// Bars builds the chart for a canvas of width x height. Bars stand on the
// bottom edge; zero-height bins produce no bar. The result is ordered
// luminance, red, green, blue.
func Bars(snap ports.HistogramSnapshot, width, height float64) []ports.Bar {
	max := MaxValue(snap)
	if max == 0 || width <= 0 || height <= 0 {
		return nil
	}

	barWidth := width / Bins
	var bars []ports.Bar
	for _, layer := range drawOrder {
		for i, v := range snap[layer.channel] {
			if v == 0 {
				continue
			}
			bh := float64(v) / float64(max) * height
			bars = append(bars, ports.Bar{
				Channel: layer.channel,
				X:       float64(i) * barWidth,
				Y:       height - bh,
				Width:   barWidth,
				Height:  bh,
				Color:   layer.color,
			})
		}
	}
	return bars
}
