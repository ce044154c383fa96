package ports

import (
	"image"
)

// FrameSink receives rendered frames of a video export, in order.
type FrameSink interface {
	// WriteFrame stores the frame with the given zero-based index.
	WriteFrame(index int64, img image.Image) error

	// Close flushes the sink. No frames may be written afterwards.
	Close() error
}
