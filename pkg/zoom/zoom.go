// Package zoom maintains the bounded zoom factor of the editing surface.
package zoom

import (
	"fmt"
	"math"

	"github.com/user/editsurface/pkg/ports"
)

const (
	DefaultMin  = 0.1
	DefaultMax  = 10.0
	DefaultStep = 1.2
)

// State is a zoom factor with its pan offset.
type State struct {
	Factor float64
	PanX   float64
	PanY   float64
}

// Default returns the fitted state.
func Default() State {
	return State{Factor: 1.0}
}

// IsDefault reports whether s equals the fitted state.
func (s State) IsDefault() bool {
	return s.Factor == 1.0 && s.PanX == 0 && s.PanY == 0
}

// Surface is the part of the render target the controller needs.
type Surface interface {
	Handle() ports.SurfaceHandle
	Usable() bool
}

// Refresher re-renders the surface after a parameter change.
type Refresher interface {
	Refresh()
}

// Options bounds the zoom factor.
type Options struct {
	Min  float64
	Max  float64
	Step float64
}

// Controller owns the ZoomState and forwards every change to the backend.
type Controller struct {
	backend   ports.Backend
	surface   Surface
	refresher Refresher
	logger    ports.Logger
	opts      Options
	state     State
}

// New creates a controller at the fitted state. refresher may be nil.
func New(backend ports.Backend, surface Surface, refresher Refresher, logger ports.Logger, opts Options) *Controller {
	if opts.Min <= 0 {
		opts.Min = DefaultMin
	}
	if opts.Max < opts.Min {
		opts.Max = DefaultMax
	}
	if opts.Step <= 1 {
		opts.Step = DefaultStep
	}
	return &Controller{
		backend:   backend,
		surface:   surface,
		refresher: refresher,
		logger:    logger.WithComponent("zoom"),
		opts:      opts,
		state:     Default(),
	}
}

// SetRefresher sets the refresher used after each change.
func (c *Controller) SetRefresher(r Refresher) {
	c.refresher = r
}

// ZoomIn multiplies the factor by the step, up to the maximum.
func (c *Controller) ZoomIn() {
	c.apply(State{Factor: c.state.Factor * c.opts.Step, PanX: c.state.PanX, PanY: c.state.PanY})
}

// ZoomOut divides the factor by the step, down to the minimum.
func (c *Controller) ZoomOut() {
	c.apply(State{Factor: c.state.Factor / c.opts.Step, PanX: c.state.PanX, PanY: c.state.PanY})
}

// Fit resets the factor to 1.0 and the pan to the origin.
func (c *Controller) Fit() {
	c.apply(Default())
}

// Set applies an explicit factor, clamped to the bounds.
func (c *Controller) Set(factor float64) {
	c.apply(State{Factor: factor, PanX: c.state.PanX, PanY: c.state.PanY})
}

// Pan moves the visible region, keeping the factor.
func (c *Controller) Pan(x, y float64) {
	c.apply(State{Factor: c.state.Factor, PanX: x, PanY: y})
}

// State returns the current zoom state.
func (c *Controller) State() State {
	return c.state
}

// Restore replaces the state without forwarding it.
func (c *Controller) Restore(s State) {
	s.Factor = c.clamp(s.Factor)
	c.state = s
}

// Factor returns the current factor.
func (c *Controller) Factor() float64 {
	return c.state.Factor
}

// Text returns the factor as a percentage, e.g. "120%".
func (c *Controller) Text() string {
	return fmt.Sprintf("%.0f%%", c.state.Factor*100)
}

// Reapply forwards the current state again, used after the surface is recreated.
func (c *Controller) Reapply() error {
	return c.forward()
}

func (c *Controller) apply(s State) {
	s.Factor = c.clamp(s.Factor)
	c.state = s
	if err := c.forward(); err != nil {
		c.logger.Warn("Zoom update failed: %v", err)
		return
	}
	if c.refresher != nil {
		c.refresher.Refresh()
	}
}

func (c *Controller) forward() error {
	if !c.surface.Usable() {
		return nil
	}
	if err := c.backend.SetZoom(c.surface.Handle(), c.state.Factor, c.state.PanX, c.state.PanY); err != nil {
		return &ports.BackendError{Op: "set zoom", Err: err}
	}
	return nil
}

func (c *Controller) clamp(f float64) float64 {
	if math.IsNaN(f) {
		return 1.0
	}
	return math.Max(c.opts.Min, math.Min(f, c.opts.Max))
}
