// Package nullsink provides a frame sink that discards every frame.
package nullsink

import (
	"image"
	"sync/atomic"

	"github.com/user/editsurface/pkg/ports"
)

// Sink implements ports.FrameSink and only counts what it receives.
type Sink struct {
	frames atomic.Int64
	closed atomic.Bool
}

// New creates a new Sink.
func New() *Sink {
	return &Sink{}
}

// WriteFrame drops the frame.
func (s *Sink) WriteFrame(index int64, img image.Image) error {
	s.frames.Add(1)
	return nil
}

// Close does nothing but record the call.
func (s *Sink) Close() error {
	s.closed.Store(true)
	return nil
}

// Frames returns the number of frames received.
func (s *Sink) Frames() int64 {
	return s.frames.Load()
}

// Closed reports whether Close was called.
func (s *Sink) Closed() bool {
	return s.closed.Load()
}

var _ ports.FrameSink = (*Sink)(nil)
