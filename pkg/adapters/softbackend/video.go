package softbackend

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"

	"github.com/user/editsurface/pkg/adapters/mp4probe"
	"github.com/user/editsurface/pkg/ports"
)

// video is the decode state of an open clip. cursor is the next frame to
// render and rendered the last one drawn, -1 before the first render.
type video struct {
	path     string
	info     mp4probe.Info
	cursor   int64
	rendered int64
}

func (v *video) frames() int64 {
	if v.info.TotalFrames < 1 {
		return 1
	}
	return v.info.TotalFrames
}

func (v *video) shown() int64 {
	if v.rendered < 0 {
		return 0
	}
	return v.rendered
}

func (v *video) timestamp(frame int64) int64 {
	if v.info.FrameRate <= 0 {
		return 0
	}
	return int64(float64(frame) * 1e6 / v.info.FrameRate)
}

func (b *Backend) probe(path string) (mp4probe.Info, error) {
	switch mp4probe.FormatFromPath(path) {
	case ports.VideoFormatUnknown:
		return mp4probe.Info{}, fmt.Errorf("probe %s: %w", filepath.Base(path), ports.ErrUnsupportedFormat)
	case ports.VideoFormatAVI, ports.VideoFormatMKV:
		return mp4probe.Info{}, fmt.Errorf("probe %s: %w", filepath.Base(path), ports.ErrUnsupportedFormat)
	}
	data, err := b.fs.ReadFile(path)
	if err != nil {
		return mp4probe.Info{}, fmt.Errorf("read video: %w", err)
	}
	info, err := mp4probe.ProbeBytes(data)
	if err != nil {
		return mp4probe.Info{}, err
	}
	info.Format = mp4probe.FormatFromPath(path)
	if info.Width < 1 || info.Height < 1 {
		return mp4probe.Info{}, fmt.Errorf("probe %s: no picture size", filepath.Base(path))
	}
	return info, nil
}

// ProbeIsVideo reports whether path is an MP4 or QuickTime file with a video track.
func (b *Backend) ProbeIsVideo(path string) (bool, error) {
	if mp4probe.FormatFromPath(path) == ports.VideoFormatUnknown {
		return false, nil
	}
	if _, err := b.probe(path); err != nil {
		return false, err
	}
	return true, nil
}

// OpenVideo opens path on the surface, replacing any image or video.
func (b *Backend) OpenVideo(h ports.SurfaceHandle, path string) error {
	info, err := b.probe(path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.lookup(h)
	if err != nil {
		return err
	}
	s.cancelExport()
	s.video = &video{path: path, info: info, rendered: -1}
	s.source = nil
	s.dirty = true
	b.logger.Debug("Video opened: %s (%dx%d, %d frames, codec %s)",
		filepath.Base(path), info.Width, info.Height, info.TotalFrames, info.Codec)
	return nil
}

// CloseVideo closes the open video and cancels its export. It is a no-op without one.
func (b *Backend) CloseVideo(h ports.SurfaceHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.lookup(h)
	if err != nil || s.video == nil {
		return
	}
	s.cancelExport()
	s.video = nil
	s.source = nil
	s.dirty = true
}

func (b *Backend) openVideo(h ports.SurfaceHandle) (*surface, *video, error) {
	s, err := b.lookup(h)
	if err != nil {
		return nil, nil, err
	}
	if s.video == nil {
		return nil, nil, ErrNoVideo
	}
	return s, s.video, nil
}

// VideoMetadata returns the metadata of the open video.
func (b *Backend) VideoMetadata(h ports.SurfaceHandle) (ports.VideoMetadata, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, v, err := b.openVideo(h)
	if err != nil {
		return ports.VideoMetadata{}, err
	}
	return v.info.Metadata(), nil
}

// RenderNextVideoFrame draws the frame at the cursor and advances it. Past the
// last frame playback wraps to the first.
func (b *Backend) RenderNextVideoFrame(h ports.SurfaceHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, v, err := b.openVideo(h)
	if err != nil {
		return err
	}
	if v.cursor >= v.frames() || v.cursor < 0 {
		v.cursor = 0
	}
	s.source = b.synthesize(v, v.cursor, s)
	s.compose()
	v.rendered = v.cursor
	v.cursor++
	return nil
}

// SeekByTimestamp moves the cursor to the frame shown at micros.
func (b *Backend) SeekByTimestamp(h ports.SurfaceHandle, micros int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, v, err := b.openVideo(h)
	if err != nil {
		return err
	}
	if micros < 0 {
		return fmt.Errorf("seek to %d us: negative timestamp", micros)
	}
	if d := v.info.DurationMicros; d > 0 && micros > d {
		micros = d
	}
	v.cursor = clampFrame(int64(float64(micros)*v.info.FrameRate/1e6), v.frames())
	return nil
}

// SeekByFrame moves the cursor to index.
func (b *Backend) SeekByFrame(h ports.SurfaceHandle, index int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, v, err := b.openVideo(h)
	if err != nil {
		return err
	}
	v.cursor = clampFrame(index, v.frames())
	return nil
}

func clampFrame(index, frames int64) int64 {
	if index < 0 {
		return 0
	}
	if index > frames-1 {
		return frames - 1
	}
	return index
}

// CurrentFrame returns the index of the frame on the surface.
func (b *Backend) CurrentFrame(h ports.SurfaceHandle) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, v, err := b.openVideo(h)
	if err != nil {
		return 0, err
	}
	return v.shown(), nil
}

// CurrentTimestamp returns the presentation time of the frame on the surface.
func (b *Backend) CurrentTimestamp(h ports.SurfaceHandle) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, v, err := b.openVideo(h)
	if err != nil {
		return 0, err
	}
	return v.timestamp(v.shown()), nil
}

// ExtractThumbnailFrame renders the first frame of path within maxW x maxH.
func (b *Backend) ExtractThumbnailFrame(path string, maxW, maxH int) (image.Image, error) {
	info, err := b.probe(path)
	if err != nil {
		return nil, err
	}
	w, h := fitWithin(info.Width, info.Height, maxW, maxH)
	return b.drawFrame(&video{path: path, info: info}, 0, w, h), nil
}

// synthesize draws frame index at the video size, capped to the surface.
func (b *Backend) synthesize(v *video, index int64, s *surface) image.Image {
	sw, sh := s.size()
	w, h := fitWithin(v.info.Width, v.info.Height, sw, sh)
	return b.drawFrame(v, index, w, h)
}

// drawFrame paints a deterministic picture for a frame index: a background
// whose hue follows the position, a sweeping bar and the frame counter.
func (b *Backend) drawFrame(v *video, index int64, w, h int) image.Image {
	total := v.frames()
	pos := float64(index) / float64(total)

	canvas := b.renderer.CreateCanvas(w, h, hsv(pos*360, 0.45, 0.55))
	barW := max(w/40, 2)
	barX := int(pos * float64(w-barW))
	canvas.DrawRect(barX, 0, barW, h, color.RGBA{255, 255, 255, 160})
	canvas.DrawRect(0, h-max(h/60, 2), int(pos*float64(w)), max(h/60, 2), color.RGBA{255, 200, 0, 255})
	canvas.DrawText(fmt.Sprintf("%s  %d / %d", filepath.Base(v.path), index+1, total), w/2, h/2, ports.TextStyle{
		Color: color.White,
		Align: ports.AlignCenter,
	})
	return canvas.ToImage()
}

// fitWithin scales w x h down to fit maxW x maxH, preserving aspect ratio.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w < 1 || h < 1 {
		return max(maxW, 1), max(maxH, 1)
	}
	if maxW < 1 || maxH < 1 || (w <= maxW && h <= maxH) {
		return w, h
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(int(float64(w)*scale), 1), max(int(float64(h)*scale), 1)
}

func hsv(hue, sat, val float64) color.RGBA {
	hue = math.Mod(hue, 360)
	c := val * sat
	x := c * (1 - math.Abs(math.Mod(hue/60, 2)-1))
	m := val - c
	var r, g, bl float64
	switch {
	case hue < 60:
		r, g = c, x
	case hue < 120:
		r, g = x, c
	case hue < 180:
		g, bl = c, x
	case hue < 240:
		g, bl = x, c
	case hue < 300:
		r, bl = x, c
	default:
		r, bl = c, x
	}
	return color.RGBA{uint8((r + m) * 255), uint8((g + m) * 255), uint8((bl + m) * 255), 255}
}
