package softbackend

import (
	"context"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/user/editsurface/pkg/ports"
)

var letterbox = color.RGBA{30, 30, 30, 255}

// look is the color pipeline configuration of a surface.
type look struct {
	params    ports.AdjustParams
	lut       *LUT
	intensity float64
}

func (l look) identity() bool {
	return l.lut == nil && l.params == ports.DefaultAdjustParams()
}

type surface struct {
	pixels  *image.RGBA
	content image.Rectangle

	// source is the still image or the most recently synthesized video frame.
	source image.Image
	look   look

	zoom, panX, panY float64
	dirty            bool

	video  *video
	export *exportJob
}

func newSurface(width, height int) *surface {
	s := &surface{
		look: look{params: ports.DefaultAdjustParams(), intensity: 1},
		zoom: 1,
	}
	s.resize(width, height)
	return s
}

func (s *surface) resize(width, height int) {
	s.pixels = image.NewRGBA(image.Rect(0, 0, width, height))
	s.content = image.Rectangle{}
	s.dirty = true
}

func (s *surface) size() (int, int) {
	b := s.pixels.Bounds()
	return b.Dx(), b.Dy()
}

// compose draws the source into the pixels, fitted, zoomed and color graded.
func (s *surface) compose() {
	draw.Draw(s.pixels, s.pixels.Bounds(), image.NewUniform(letterbox), image.Point{}, draw.Src)
	s.content = image.Rectangle{}
	s.dirty = false
	if s.source == nil {
		return
	}

	dst := placement(s.source.Bounds(), s.pixels.Bounds(), s.zoom, s.panX, s.panY)
	if dst.Empty() {
		return
	}
	draw.ApproxBiLinear.Scale(s.pixels, dst, s.source, s.source.Bounds(), draw.Src, nil)
	s.content = dst.Intersect(s.pixels.Bounds())
	grade(s.pixels, s.content, s.look)
}

// placement fits src into dst, scales the fit by zoom and offsets it by the pan.
func placement(src, dst image.Rectangle, zoom, panX, panY float64) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	dw, dh := float64(dst.Dx()), float64(dst.Dy())
	if sw <= 0 || sh <= 0 || dw <= 0 || dh <= 0 {
		return image.Rectangle{}
	}
	scale := math.Min(dw/sw, dh/sh) * zoom
	w, h := sw*scale, sh*scale
	x := (dw-w)/2 + panX
	y := (dh-h)/2 + panY
	return image.Rect(int(math.Round(x)), int(math.Round(y)), int(math.Round(x+w)), int(math.Round(y+h)))
}

// graded returns the source at its own resolution with the look applied.
func graded(src image.Image, l look) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	grade(out, out.Bounds(), l)
	return out
}

func (s *surface) cancelExport() {
	if s.export != nil {
		s.export.cancel()
	}
}

func (s *surface) exporting() bool {
	return s.export != nil && s.export.running()
}

type exportJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (j *exportJob) running() bool {
	select {
	case <-j.done:
		return false
	default:
		return true
	}
}
