// Package resize recreates the render surface on window size changes
// without losing what the user sees.
package resize

import (
	"fmt"

	"github.com/user/editsurface/pkg/lifecycle"
	"github.com/user/editsurface/pkg/playback"
	"github.com/user/editsurface/pkg/ports"
	"github.com/user/editsurface/pkg/zoom"
)

// Target is the render surface being resized.
type Target interface {
	Exists() bool
	Usable() bool
	Size() (width, height int)
	Resize(width, height int, renderFirst func(h ports.SurfaceHandle) error) error
}

// Playback is the media side of a resize session.
type Playback interface {
	Snapshot() playback.Snapshot
	Restore(s playback.Snapshot)
}

// Zoom is the zoom side of a resize session.
type Zoom interface {
	State() zoom.State
	Restore(s zoom.State)
	Reapply() error
}

// Session is the state saved for one resize-and-recreate cycle.
type Session struct {
	Width  int
	Height int
	Zoom   zoom.State
	Media  playback.Snapshot
}

type size struct {
	width, height int
}

// Coordinator runs the Idle -> Resizing -> Idle cycle.
type Coordinator struct {
	backend  ports.Backend
	target   Target
	machine  *lifecycle.Machine
	playback Playback
	zoom     Zoom
	poster   ports.Poster
	logger   ports.Logger

	pending *size
	resizes int
	onDone  func(Session, error)
}

// New creates a Coordinator.
func New(backend ports.Backend, target Target, machine *lifecycle.Machine, pb Playback, z Zoom, poster ports.Poster, logger ports.Logger) *Coordinator {
	return &Coordinator{
		backend:  backend,
		target:   target,
		machine:  machine,
		playback: pb,
		zoom:     z,
		poster:   poster,
		logger:   logger.WithComponent("resize"),
	}
}

// OnDone registers a callback run on the UI loop after each resize cycle.
func (c *Coordinator) OnDone(fn func(Session, error)) {
	c.onDone = fn
}

// Resizes returns the number of completed resize cycles.
func (c *Coordinator) Resizes() int {
	return c.resizes
}

// OnSizeChanged handles a size-change event. Events that arrive while a
// resize or initialization owns the surface are not acted on; the latest
// one is replayed once the machine is idle again.
func (c *Coordinator) OnSizeChanged(width, height int) {
	if width < 1 || height < 1 {
		return
	}
	if c.machine.Busy() {
		if c.pending == nil {
			c.machine.WhenIdle(c.replayPending)
		}
		c.pending = &size{width, height}
		c.logger.Debug("Size change to %dx%d deferred", width, height)
		return
	}
	if !c.target.Exists() {
		return
	}
	if w, h := c.target.Size(); w == width && h == height && c.target.Usable() {
		return
	}
	if !c.machine.TryBeginResize() {
		return
	}

	session := Session{
		Width:  width,
		Height: height,
		Zoom:   c.zoom.State(),
		Media:  c.playback.Snapshot(),
	}
	c.logger.Debug("Resizing surface to %dx%d", width, height)

	err := c.target.Resize(width, height, func(h ports.SurfaceHandle) error {
		return c.renderFirst(h, session.Media)
	})
	if err != nil {
		c.logger.Warn("Resize to %dx%d failed: %v", width, height, err)
		c.machine.EndResize()
		c.finish(session, err)
		return
	}

	if !c.poster.Post(func() { c.restore(session) }) {
		c.restore(session)
	}
}

// renderFirst puts one frame into the recreated surface before it is published.
func (c *Coordinator) renderFirst(h ports.SurfaceHandle, media playback.Snapshot) error {
	if media.Kind == playback.KindVideo {
		if err := c.backend.SeekByFrame(h, media.Frame); err != nil {
			return &ports.BackendError{Op: "seek to frame", Err: err}
		}
		if err := c.backend.RenderNextVideoFrame(h); err != nil {
			return &ports.BackendError{Op: "render video frame", Err: err}
		}
		return nil
	}
	if err := c.backend.RenderStatic(h); err != nil {
		return &ports.BackendError{Op: "render static", Err: err}
	}
	return nil
}

// restore runs on the UI loop after the new surface is published.
func (c *Coordinator) restore(s Session) {
	c.playback.Restore(s.Media)
	c.zoom.Restore(s.Zoom)
	var err error
	if !s.Zoom.IsDefault() {
		if zerr := c.zoom.Reapply(); zerr != nil {
			c.logger.Warn("Zoom reapply failed: %v", zerr)
			err = fmt.Errorf("reapply zoom: %w", zerr)
		}
	}
	c.resizes++
	c.machine.EndResize()
	c.logger.Debug("Resize to %dx%d restored", s.Width, s.Height)
	c.finish(s, err)
}

func (c *Coordinator) finish(s Session, err error) {
	if c.onDone != nil {
		c.onDone(s, err)
	}
}

func (c *Coordinator) replayPending() {
	p := c.pending
	c.pending = nil
	if p == nil {
		return
	}
	c.OnSizeChanged(p.width, p.height)
}
