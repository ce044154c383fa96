package filters

import (
	"fmt"
	"strings"

	"github.com/user/editsurface/pkg/ports"
)

// Surface is the part of the render target the controller needs.
type Surface interface {
	Handle() ports.SurfaceHandle
	Usable() bool
}

// Refresher re-renders the surface after a parameter change.
type Refresher interface {
	Refresh()
}

// adjustment binds a user-facing name to its parameter field.
type adjustment struct {
	name  string
	field func(p *ports.AdjustParams) *float64
}

var adjustments = []adjustment{
	{"exposure", func(p *ports.AdjustParams) *float64 { return &p.Exposure }},
	{"contrast", func(p *ports.AdjustParams) *float64 { return &p.Contrast }},
	{"highlights", func(p *ports.AdjustParams) *float64 { return &p.Highlights }},
	{"shadows", func(p *ports.AdjustParams) *float64 { return &p.Shadows }},
	{"whites", func(p *ports.AdjustParams) *float64 { return &p.Whites }},
	{"blacks", func(p *ports.AdjustParams) *float64 { return &p.Blacks }},
	{"temperature", func(p *ports.AdjustParams) *float64 { return &p.Temperature }},
	{"tint", func(p *ports.AdjustParams) *float64 { return &p.Tint }},
	{"vibrance", func(p *ports.AdjustParams) *float64 { return &p.Vibrance }},
	{"saturation", func(p *ports.AdjustParams) *float64 { return &p.Saturation }},
	{"sharpness", func(p *ports.AdjustParams) *float64 { return &p.Sharpness }},
	{"noise_reduction", func(p *ports.AdjustParams) *float64 { return &p.NoiseReduction }},
	{"vignette", func(p *ports.AdjustParams) *float64 { return &p.Vignette }},
	{"grain", func(p *ports.AdjustParams) *float64 { return &p.Grain }},
}

// AdjustmentNames lists the names SetAdjustment accepts.
func AdjustmentNames() []string {
	names := make([]string, len(adjustments))
	for i, a := range adjustments {
		names[i] = a.name
	}
	return names
}

func lookupAdjustment(name string) (adjustment, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for _, a := range adjustments {
		if a.name == key {
			return a, true
		}
	}
	return adjustment{}, false
}

// Controller holds the selected filter, its intensity and the adjustment
// parameters, and pushes them to the backend.
type Controller struct {
	backend   ports.Backend
	surface   Surface
	catalog   *Catalog
	refresher Refresher
	logger    ports.Logger

	selected  string
	intensity float64
	params    ports.AdjustParams
}

// NewController creates a controller with no filter, full intensity and default adjustments.
func NewController(backend ports.Backend, surface Surface, catalog *Catalog, refresher Refresher, logger ports.Logger) *Controller {
	return &Controller{
		backend:   backend,
		surface:   surface,
		catalog:   catalog,
		refresher: refresher,
		logger:    logger.WithComponent("filters"),
		selected:  None,
		intensity: 1.0,
		params:    ports.DefaultAdjustParams(),
	}
}

// SetRefresher replaces the refresher.
func (c *Controller) SetRefresher(r Refresher) {
	c.refresher = r
}

// Select activates the named filter. None removes the active one.
func (c *Controller) Select(name string) error {
	if !c.surface.Usable() {
		return fmt.Errorf("select filter: %w", ports.ErrResourceUnavailable)
	}
	h := c.surface.Handle()

	if name == "" || name == None {
		if err := c.backend.RemoveFilter(h); err != nil {
			return &ports.BackendError{Op: "remove filter", Err: err}
		}
		c.selected = None
		c.logger.Info("Filter removed")
		c.refresh()
		return nil
	}

	f, ok := c.catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("select filter %q: %w", name, ports.ErrFileNotFound)
	}
	if err := c.backend.LoadFilterLUT(h, f.Path); err != nil {
		c.logger.Warn("Failed to load filter %s: %v", f.Name, err)
		return &ports.BackendError{Op: "load LUT", Path: f.Path, Err: err}
	}
	if err := c.backend.SetFilterIntensity(h, c.intensity); err != nil {
		return &ports.BackendError{Op: "set filter intensity", Err: err}
	}
	c.selected = f.Name
	c.logger.Info("Filter selected: %s", f.Name)
	c.refresh()
	return nil
}

// SetIntensity sets the filter strength from a 0-100 slider value.
func (c *Controller) SetIntensity(percent float64) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	c.intensity = percent / 100
	if !c.surface.Usable() {
		return nil
	}
	if err := c.backend.SetFilterIntensity(c.surface.Handle(), c.intensity); err != nil {
		return &ports.BackendError{Op: "set filter intensity", Err: err}
	}
	c.refresh()
	return nil
}

// SetAdjustment changes one named adjustment and sends the full parameter set.
func (c *Controller) SetAdjustment(name string, value float64) error {
	a, ok := lookupAdjustment(name)
	if !ok {
		return fmt.Errorf("adjustment %q: %w", name, ports.ErrUnknownAdjustment)
	}
	*a.field(&c.params) = value
	return c.push()
}

// Adjustment returns the current value of a named adjustment.
func (c *Controller) Adjustment(name string) (float64, error) {
	a, ok := lookupAdjustment(name)
	if !ok {
		return 0, fmt.Errorf("adjustment %q: %w", name, ports.ErrUnknownAdjustment)
	}
	return *a.field(&c.params), nil
}

// SetParams replaces every adjustment at once.
func (c *Controller) SetParams(p ports.AdjustParams) error {
	c.params = p
	return c.push()
}

// ResetAdjustments restores the default adjustments.
func (c *Controller) ResetAdjustments() error {
	c.params = ports.DefaultAdjustParams()
	if !c.surface.Usable() {
		return nil
	}
	if err := c.backend.ResetAdjustParams(c.surface.Handle()); err != nil {
		return &ports.BackendError{Op: "reset adjustments", Err: err}
	}
	c.logger.Debug("Adjustments reset")
	c.refresh()
	return nil
}

func (c *Controller) push() error {
	if !c.surface.Usable() {
		return nil
	}
	if err := c.backend.SetAdjustParams(c.surface.Handle(), c.params); err != nil {
		c.logger.Warn("Failed to apply adjustments: %v", err)
		return &ports.BackendError{Op: "set adjustments", Err: err}
	}
	c.refresh()
	return nil
}

func (c *Controller) refresh() {
	if c.refresher != nil {
		c.refresher.Refresh()
	}
}

// Selected returns the active filter name, None when no filter is active.
func (c *Controller) Selected() string {
	return c.selected
}

// Intensity returns the filter strength in 0..1.
func (c *Controller) Intensity() float64 {
	return c.intensity
}

// Params returns the current adjustment parameters.
func (c *Controller) Params() ports.AdjustParams {
	return c.params
}

// Catalog returns the filter catalog.
func (c *Controller) Catalog() *Catalog {
	return c.catalog
}

// Setting is one named adjustment value.
type Setting struct {
	Name  string
	Value float64
}

// Changed lists the adjustments that differ from the defaults, in AdjustmentNames order.
func (c *Controller) Changed() []Setting {
	defaults := ports.DefaultAdjustParams()
	var out []Setting
	for _, a := range adjustments {
		if v := *a.field(&c.params); v != *a.field(&defaults) {
			out = append(out, Setting{Name: a.name, Value: v})
		}
	}
	return out
}
