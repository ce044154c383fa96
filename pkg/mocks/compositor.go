package mocks

import (
	"sync"

	"github.com/user/editsurface/pkg/ports"
)

// Compositor is a mock implementation of ports.Compositor.
type Compositor struct {
	mu sync.Mutex

	AttachFunc func(shared ports.SharedHandle) error

	Attached    ports.SharedHandle
	AttachCalls []ports.SharedHandle
	Detaches    int
	Invalidates int

	// Events records Attach, Detach and Invalidate in call order.
	Events []string
}

// NewCompositor creates a new mock Compositor.
func NewCompositor() *Compositor {
	return &Compositor{}
}

func (m *Compositor) Attach(shared ports.SharedHandle) error {
	m.mu.Lock()
	m.Events = append(m.Events, "Attach")
	m.AttachCalls = append(m.AttachCalls, shared)
	m.mu.Unlock()
	if m.AttachFunc != nil {
		if err := m.AttachFunc(shared); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Attached = shared
	return nil
}

func (m *Compositor) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, "Detach")
	m.Detaches++
	m.Attached = 0
}

func (m *Compositor) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, "Invalidate")
	m.Invalidates++
}

var _ ports.Compositor = (*Compositor)(nil)

// HistogramView is a mock implementation of ports.HistogramView.
type HistogramView struct {
	Width  int
	Height int

	Clears   int
	Presents int
	Bars     []ports.Bar
}

// NewHistogramView creates a mock view with the given laid out size.
func NewHistogramView(width, height int) *HistogramView {
	return &HistogramView{Width: width, Height: height}
}

func (m *HistogramView) Size() (int, int) {
	return m.Width, m.Height
}

func (m *HistogramView) Clear() {
	m.Clears++
	m.Bars = nil
}

func (m *HistogramView) Present(bars []ports.Bar) {
	m.Presents++
	m.Bars = append([]ports.Bar(nil), bars...)
}

var _ ports.HistogramView = (*HistogramView)(nil)
