// Package filesink writes exported video frames as a numbered image sequence.
package filesink

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"

	"github.com/user/editsurface/pkg/ports"
)

// ErrClosed is returned by WriteFrame after Close.
var ErrClosed = errors.New("sink closed")

// Sink stores each frame as <dir>/frame-00000.<ext>.
type Sink struct {
	dir      string
	fs       ports.FileSystem
	renderer ports.Renderer
	format   ports.ImageFormat
	quality  int

	mu      sync.Mutex
	created bool
	closed  bool
	written int64
}

// New creates a sink writing into dir. FormatAuto selects PNG.
func New(dir string, fs ports.FileSystem, renderer ports.Renderer, format ports.ImageFormat, quality int) *Sink {
	if format == ports.FormatAuto {
		format = ports.FormatPNG
	}
	return &Sink{
		dir:      dir,
		fs:       fs,
		renderer: renderer,
		format:   format,
		quality:  quality,
	}
}

// FramesDir returns the directory frames of an export to path are written to:
// the path without its extension plus "_frames".
func FramesDir(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "_frames"
}

// Dir returns the output directory.
func (s *Sink) Dir() string {
	return s.dir
}

// Written returns the number of frames stored.
func (s *Sink) Written() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// FramePath returns the file a frame index is stored at.
func (s *Sink) FramePath(index int64) string {
	ext := "png"
	if s.format == ports.FormatJPEG {
		ext = "jpg"
	}
	return filepath.Join(s.dir, fmt.Sprintf("frame-%05d.%s", index, ext))
}

// WriteFrame encodes img and stores it under its index.
func (s *Sink) WriteFrame(index int64, img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if !s.created {
		if err := s.fs.MkdirAll(s.dir); err != nil {
			return fmt.Errorf("create %s: %w", s.dir, err)
		}
		s.created = true
	}
	data, err := s.renderer.EncodeImage(img, s.format, s.quality)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	if err := s.fs.WriteFile(s.FramePath(index), data); err != nil {
		return fmt.Errorf("write frame %d: %w", index, err)
	}
	s.written++
	return nil
}

// Close marks the sequence complete. Closing twice is harmless.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ ports.FrameSink = (*Sink)(nil)
