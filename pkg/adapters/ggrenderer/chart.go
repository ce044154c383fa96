package ggrenderer

import (
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"

	"github.com/user/editsurface/pkg/ports"
)

// Chart is a ports.HistogramView drawn into an offscreen gg context.
type Chart struct {
	mu       sync.Mutex
	dc       *gg.Context
	bg       color.Color
	bars     int
	presents int
}

// NewChart creates a chart of width x height filled with bg.
func NewChart(width, height int, bg color.Color) *Chart {
	c := &Chart{dc: gg.NewContext(width, height), bg: bg}
	c.Clear()
	return c
}

// Size returns the chart dimensions.
func (c *Chart) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

// Clear paints the background over every bar.
func (c *Chart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.SetColor(c.bg)
	c.dc.Clear()
	c.bars = 0
}

// Present replaces the chart with bars. Colors are blended so overlapping
// channels stay visible.
func (c *Chart) Present(bars []ports.Bar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.SetColor(c.bg)
	c.dc.Clear()
	for _, b := range bars {
		c.dc.SetColor(b.Color)
		c.dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		c.dc.Fill()
	}
	c.bars = len(bars)
	c.presents++
}

// Bars returns the number of bars of the last Present.
func (c *Chart) Bars() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bars
}

// Presents returns how often the chart was presented.
func (c *Chart) Presents() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presents
}

// Image returns a snapshot of the chart.
func (c *Chart) Image() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	src := c.dc.Image()
	out := image.NewRGBA(src.Bounds())
	for y := out.Rect.Min.Y; y < out.Rect.Max.Y; y++ {
		for x := out.Rect.Min.X; x < out.Rect.Max.X; x++ {
			out.Set(x, y, src.At(x, y))
		}
	}
	return out
}

var _ ports.HistogramView = (*Chart)(nil)
