package softbackend

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/user/editsurface/pkg/ports"
)

// LoadImage decodes a still image into the surface, replacing any open video.
// On failure the surface keeps its previous content.
func (b *Backend) LoadImage(h ports.SurfaceHandle, path string) error {
	data, err := b.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.lookup(h)
	if err != nil {
		return err
	}
	s.video = nil
	s.source = img
	s.dirty = true
	bounds := img.Bounds()
	b.logger.Debug("Decoded %s image %dx%d", format, bounds.Dx(), bounds.Dy())
	return nil
}

// RenderStatic redraws the current image or paused video frame. A surface
// with nothing loaded is cleared to the letterbox color. It only recomposes
// when something changed since the last render.
func (b *Backend) RenderStatic(h ports.SurfaceHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.lookup(h)
	if err != nil {
		return err
	}
	if s.source == nil && s.video != nil {
		s.source = b.synthesize(s.video, s.video.shown(), s)
		s.dirty = true
	}
	if s.dirty {
		s.compose()
	}
	return nil
}

// ExportImage writes the displayed image at its own resolution with the look applied.
func (b *Backend) ExportImage(h ports.SurfaceHandle, path string, format ports.ImageFormat, quality int) error {
	b.mu.Lock()
	s, err := b.lookup(h)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	if s.source == nil {
		b.mu.Unlock()
		return ErrNoImage
	}
	out := graded(s.source, s.look)
	b.mu.Unlock()

	if format == ports.FormatAuto {
		format = ports.FormatJPEG
	}
	data, err := b.renderer.EncodeImage(out, format, quality)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := b.fs.WriteFile(path, data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
