package mocks

import (
	"fmt"
	"image"
	"sync"

	"github.com/user/editsurface/pkg/ports"
)

// FrameSink is a mock implementation of ports.FrameSink.
type FrameSink struct {
	mu sync.Mutex

	WriteFrameFunc func(index int64, img image.Image) error

	Frames map[int64]image.Image
	Closed bool
}

// NewFrameSink creates a new mock FrameSink.
func NewFrameSink() *FrameSink {
	return &FrameSink{Frames: make(map[int64]image.Image)}
}

func (m *FrameSink) WriteFrame(index int64, img image.Image) error {
	if m.WriteFrameFunc != nil {
		if err := m.WriteFrameFunc(index, img); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed {
		return fmt.Errorf("sink closed")
	}
	m.Frames[index] = img
	return nil
}

func (m *FrameSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Count returns the number of frames written.
func (m *FrameSink) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Frames)
}

// IsClosed reports whether Close was called.
func (m *FrameSink) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Closed
}

var _ ports.FrameSink = (*FrameSink)(nil)
