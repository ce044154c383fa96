// Package surface owns the render surface handle and its shared export.
package surface

import (
	"errors"
	"fmt"

	"github.com/user/editsurface/pkg/ports"
)

// ErrInvalidSize is returned for surface dimensions below 1x1.
var ErrInvalidSize = errors.New("surface: invalid dimensions")

// Target is the single owner of a backend render surface. The raw handle is
// never handed out for ownership; callers borrow it through Handle.
type Target struct {
	backend    ports.Backend
	compositor ports.Compositor
	logger     ports.Logger

	handle ports.SurfaceHandle
	shared ports.SharedHandle
	width  int
	height int
	usable bool
}

// New creates a Target without a surface.
func New(backend ports.Backend, compositor ports.Compositor, logger ports.Logger) *Target {
	return &Target{
		backend:    backend,
		compositor: compositor,
		logger:     logger.WithComponent("surface"),
	}
}

// Create allocates a surface and publishes it. An existing surface is
// detached and destroyed first. On failure nothing stays allocated.
func (t *Target) Create(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("create %dx%d: %w", width, height, ErrInvalidSize)
	}
	if t.handle != 0 {
		t.Destroy()
	}

	h, err := t.backend.CreateSurface(width, height)
	if err == nil && h == 0 {
		err = errors.New("null handle")
	}
	if err != nil {
		return &ports.BackendError{Op: "create surface", Err: err}
	}

	shared, err := t.backend.SharedHandle(h)
	if err == nil && shared == 0 {
		err = errors.New("null shared handle")
	}
	if err != nil {
		t.backend.DestroySurface(h)
		return &ports.BackendError{Op: "export shared handle", Err: err}
	}

	if err := t.compositor.Attach(shared); err != nil {
		t.backend.DestroySurface(h)
		return fmt.Errorf("attach surface: %w", err)
	}

	t.handle = h
	t.shared = shared
	t.width = width
	t.height = height
	t.usable = true
	t.logger.Debug("Surface created: %dx%d", width, height)
	return nil
}

// Resize recreates the surface storage at a new size. The compositor is
// detached before the old storage goes away and keeps showing its last
// frame; renderFirst draws into the new storage before it is published.
// Any failure leaves the target unusable until the next successful
// Resize or Create.
func (t *Target) Resize(width, height int, renderFirst func(h ports.SurfaceHandle) error) error {
	if t.handle == 0 {
		return fmt.Errorf("resize: %w", ports.ErrResourceUnavailable)
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("resize %dx%d: %w", width, height, ErrInvalidSize)
	}

	t.compositor.Detach()
	t.shared = 0
	t.usable = false

	if err := t.backend.ResizeSurface(t.handle, width, height); err != nil {
		return &ports.BackendError{Op: "resize surface", Err: err}
	}
	t.width = width
	t.height = height

	shared, err := t.backend.SharedHandle(t.handle)
	if err == nil && shared == 0 {
		err = errors.New("null shared handle")
	}
	if err != nil {
		return &ports.BackendError{Op: "export shared handle", Err: err}
	}

	if renderFirst != nil {
		if err := renderFirst(t.handle); err != nil {
			return fmt.Errorf("first render: %w", err)
		}
	}

	if err := t.compositor.Attach(shared); err != nil {
		return fmt.Errorf("attach surface: %w", err)
	}
	t.shared = shared
	t.usable = true
	t.compositor.Invalidate()

	t.logger.Debug("Surface resized: %dx%d", width, height)
	return nil
}

// Destroy detaches and frees the surface. Calling it again does nothing.
func (t *Target) Destroy() {
	if t.handle == 0 {
		return
	}
	t.compositor.Detach()
	t.backend.DestroySurface(t.handle)
	t.logger.Debug("Surface destroyed")

	t.handle = 0
	t.shared = 0
	t.width = 0
	t.height = 0
	t.usable = false
}

// Invalidate marks the published surface dirty. It does nothing when the
// surface is not usable.
func (t *Target) Invalidate() {
	if !t.Usable() {
		return
	}
	t.compositor.Invalidate()
}

// Handle returns the borrowed surface handle, zero when none exists.
func (t *Target) Handle() ports.SurfaceHandle {
	return t.handle
}

// Shared returns the published shared handle, zero while unpublished.
func (t *Target) Shared() ports.SharedHandle {
	return t.shared
}

// Size returns the surface dimensions.
func (t *Target) Size() (width, height int) {
	return t.width, t.height
}

// Exists reports whether a surface is allocated, usable or not.
func (t *Target) Exists() bool {
	return t.handle != 0
}

// Usable reports whether the surface may be rendered into and presented.
func (t *Target) Usable() bool {
	return t.handle != 0 && t.usable
}
