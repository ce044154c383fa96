// Package presenter implements ports.Compositor over surfaces whose pixels can
// be resolved from a shared handle.
package presenter

import (
	"image"
	"sync"

	"github.com/user/editsurface/pkg/ports"
)

// Source resolves a shared handle to the current surface pixels.
type Source interface {
	Frame(shared ports.SharedHandle) (image.Image, error)
}

// Presenter keeps a front buffer that only changes on Invalidate. Attaching
// a handle does not present it, so freshly recreated storage is never shown
// before it has been rendered.
type Presenter struct {
	mu        sync.Mutex
	source    Source
	logger    ports.Logger
	shared    ports.SharedHandle
	front     image.Image
	presents  int
	onPresent func(image.Image)
}

// New creates a presenter reading frames from source.
func New(source Source, logger ports.Logger) *Presenter {
	return &Presenter{
		source: source,
		logger: logger.WithComponent("presenter"),
	}
}

// OnPresent registers fn to receive each new front frame.
func (p *Presenter) OnPresent(fn func(image.Image)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onPresent = fn
}

// Attach makes shared the displayed surface.
func (p *Presenter) Attach(shared ports.SharedHandle) error {
	if shared == 0 {
		return ports.ErrResourceUnavailable
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shared = shared
	p.logger.Debug("Attached shared handle %d", shared)
	return nil
}

// Detach drops the handle. The front buffer keeps the last frame.
func (p *Presenter) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shared = 0
}

// Invalidate copies the attached surface into the front buffer.
func (p *Presenter) Invalidate() {
	p.mu.Lock()
	shared := p.shared
	p.mu.Unlock()
	if shared == 0 {
		return
	}

	img, err := p.source.Frame(shared)
	if err != nil {
		p.logger.Warn("Present failed for handle %d: %v", shared, err)
		return
	}

	p.mu.Lock()
	if p.shared != shared {
		p.mu.Unlock()
		return
	}
	p.front = img
	p.presents++
	fn := p.onPresent
	p.mu.Unlock()

	if fn != nil {
		fn(img)
	}
}

// Front returns the frame on screen, nil before the first present.
func (p *Presenter) Front() image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.front
}

// Attached returns the displayed shared handle, zero when detached.
func (p *Presenter) Attached() ports.SharedHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shared
}

// Presents returns how many frames have been presented.
func (p *Presenter) Presents() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.presents
}

var _ ports.Compositor = (*Presenter)(nil)
