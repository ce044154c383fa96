// Package softbackend implements ports.Backend on the CPU. Surfaces are RGBA
// buffers, still images are decoded with the image package, and video frames
// are synthesized from the probed container metadata.
package softbackend

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/user/editsurface/pkg/adapters/filesink"
	"github.com/user/editsurface/pkg/adapters/ggrenderer"
	"github.com/user/editsurface/pkg/adapters/osfilesystem"
	"github.com/user/editsurface/pkg/ports"
)

var (
	// ErrNotInitialized is returned by calls made before Init or after Shutdown.
	ErrNotInitialized = errors.New("backend not initialized")
	// ErrUnknownSurface is returned for handles the backend did not create.
	ErrUnknownSurface = errors.New("unknown surface handle")
	// ErrNoVideo is returned by video calls on a surface without an open video.
	ErrNoVideo = errors.New("no video open")
	// ErrNoImage is returned when a surface has no picture to export.
	ErrNoImage = errors.New("no image loaded")
)

// Options configures the backend. Zero values select the OS filesystem, the
// gg renderer and exported frames written as image sequences.
type Options struct {
	FileSystem ports.FileSystem
	Renderer   ports.Renderer
	NewSink    func(path string) (ports.FrameSink, error)
	// MaxSurface bounds surface dimensions.
	MaxSurface int
}

// Backend is a CPU implementation of ports.Backend.
type Backend struct {
	mu sync.Mutex

	fs       ports.FileSystem
	renderer ports.Renderer
	newSink  func(path string) (ports.FrameSink, error)
	logger   ports.Logger
	maxSize  int

	initialized bool
	surfaces    map[ports.SurfaceHandle]*surface
	shared      map[ports.SharedHandle]ports.SurfaceHandle
	nextHandle  ports.SurfaceHandle
	nextShared  ports.SharedHandle
}

// New creates a backend. Init must be called before any other method.
func New(logger ports.Logger, opts Options) *Backend {
	if opts.FileSystem == nil {
		opts.FileSystem = osfilesystem.New()
	}
	if opts.Renderer == nil {
		opts.Renderer = ggrenderer.New()
	}
	if opts.MaxSurface <= 0 {
		opts.MaxSurface = 8192
	}
	b := &Backend{
		fs:       opts.FileSystem,
		renderer: opts.Renderer,
		newSink:  opts.NewSink,
		logger:   logger.WithComponent("softbackend"),
		maxSize:  opts.MaxSurface,
	}
	if b.newSink == nil {
		b.newSink = func(path string) (ports.FrameSink, error) {
			return filesink.New(filesink.FramesDir(path), b.fs, b.renderer, ports.FormatPNG, 0), nil
		}
	}
	return b
}

// Init prepares the backend. Calling it twice is harmless.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}
	b.surfaces = make(map[ports.SurfaceHandle]*surface)
	b.shared = make(map[ports.SharedHandle]ports.SurfaceHandle)
	b.initialized = true
	b.logger.Debug("Backend initialized")
	return nil
}

// Shutdown cancels running exports and releases every surface.
func (b *Backend) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return
	}
	for _, s := range b.surfaces {
		s.cancelExport()
	}
	b.surfaces = nil
	b.shared = nil
	b.initialized = false
	b.logger.Debug("Backend shut down")
}

func (b *Backend) validSize(width, height int) error {
	if width < 1 || height < 1 || width > b.maxSize || height > b.maxSize {
		return fmt.Errorf("surface size %dx%d out of range", width, height)
	}
	return nil
}

// CreateSurface allocates a surface of the given size.
func (b *Backend) CreateSurface(width, height int) (ports.SurfaceHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return 0, ErrNotInitialized
	}
	if err := b.validSize(width, height); err != nil {
		return 0, err
	}
	b.nextHandle++
	b.surfaces[b.nextHandle] = newSurface(width, height)
	return b.nextHandle, nil
}

// ResizeSurface reallocates the pixels. Loaded media, adjustments, the filter
// and the video position are kept. Existing shared handles stop resolving.
func (b *Backend) ResizeSurface(h ports.SurfaceHandle, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.lookup(h)
	if err != nil {
		return err
	}
	if err := b.validSize(width, height); err != nil {
		return err
	}
	b.revokeShared(h)
	s.resize(width, height)
	return nil
}

// DestroySurface releases a surface. Unknown handles are ignored.
func (b *Backend) DestroySurface(h ports.SurfaceHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return
	}
	if s, ok := b.surfaces[h]; ok {
		s.cancelExport()
		delete(b.surfaces, h)
		b.revokeShared(h)
	}
}

// SharedHandle returns a fresh token the presenter can resolve to the surface pixels.
func (b *Backend) SharedHandle(h ports.SurfaceHandle) (ports.SharedHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.lookup(h); err != nil {
		return 0, err
	}
	b.nextShared++
	b.shared[b.nextShared] = h
	return b.nextShared, nil
}

// Frame returns a copy of the pixels behind a shared handle.
func (b *Backend) Frame(shared ports.SharedHandle) (image.Image, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	h, ok := b.shared[shared]
	if !ok {
		return nil, fmt.Errorf("shared handle %d: %w", shared, ErrUnknownSurface)
	}
	s := b.surfaces[h]
	out := image.NewRGBA(s.pixels.Bounds())
	copy(out.Pix, s.pixels.Pix)
	return out, nil
}

func (b *Backend) revokeShared(h ports.SurfaceHandle) {
	for token, owner := range b.shared {
		if owner == h {
			delete(b.shared, token)
		}
	}
}

// lookup must be called with b.mu held.
func (b *Backend) lookup(h ports.SurfaceHandle) (*surface, error) {
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	s, ok := b.surfaces[h]
	if !ok {
		return nil, fmt.Errorf("handle %d: %w", h, ErrUnknownSurface)
	}
	return s, nil
}

// SetAdjustParams replaces the adjustment parameters.
func (b *Backend) SetAdjustParams(h ports.SurfaceHandle, params ports.AdjustParams) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.lookup(h)
	if err != nil {
		return err
	}
	s.look.params = params
	s.dirty = true
	return nil
}

// ResetAdjustParams restores default adjustments. The filter is kept.
func (b *Backend) ResetAdjustParams(h ports.SurfaceHandle) error {
	return b.SetAdjustParams(h, ports.DefaultAdjustParams())
}

// LoadFilterLUT parses a .cube file and makes it the active filter.
func (b *Backend) LoadFilterLUT(h ports.SurfaceHandle, path string) error {
	data, err := b.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read LUT: %w", err)
	}
	lut, err := ParseCube(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.lookup(h)
	if err != nil {
		return err
	}
	s.look.lut = lut
	s.dirty = true
	b.logger.Debug("LUT loaded: %s (size %d)", path, lut.Size)
	return nil
}

// SetFilterIntensity sets the blend between the unfiltered and filtered colors.
func (b *Backend) SetFilterIntensity(h ports.SurfaceHandle, intensity float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.lookup(h)
	if err != nil {
		return err
	}
	s.look.intensity = clamp01(intensity)
	s.dirty = true
	return nil
}

// RemoveFilter drops the active LUT.
func (b *Backend) RemoveFilter(h ports.SurfaceHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.lookup(h)
	if err != nil {
		return err
	}
	s.look.lut = nil
	s.dirty = true
	return nil
}

// SetZoom sets the zoom factor and the pan offset in surface pixels.
func (b *Backend) SetZoom(h ports.SurfaceHandle, factor, panX, panY float64) error {
	if factor <= 0 || factor != factor {
		return fmt.Errorf("invalid zoom factor %v", factor)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.lookup(h)
	if err != nil {
		return err
	}
	s.zoom, s.panX, s.panY = factor, panX, panY
	s.dirty = true
	return nil
}

var _ ports.Backend = (*Backend)(nil)
