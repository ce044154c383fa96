// Package lifecycle holds the guarded state machine shared by every tick
// source that touches the render surface.
package lifecycle

import "fmt"

// Phase is the surface lifecycle phase.
type Phase int

const (
	// PhaseUninitialized: the backend has not been initialized yet.
	PhaseUninitialized Phase = iota
	// PhaseInitializing: backend init or the first surface creation is running.
	PhaseInitializing
	// PhaseIdle: the surface may be rendered and presented.
	PhaseIdle
	// PhaseResizing: a resize session owns the surface.
	PhaseResizing
	// PhaseFailed: backend init failed; nothing can ever be presented.
	PhaseFailed
	// PhaseClosed: the session has been shut down.
	PhaseClosed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitializing:
		return "initializing"
	case PhaseIdle:
		return "idle"
	case PhaseResizing:
		return "resizing"
	case PhaseFailed:
		return "failed"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Machine tracks the phase plus the orthogonal seeking flag. It is owned
// by the UI loop and is not safe for concurrent use.
type Machine struct {
	phase   Phase
	seeking bool
	onIdle  []func()
}

// New creates a Machine in PhaseUninitialized.
func New() *Machine {
	return &Machine{}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// TryBeginInit moves Uninitialized to Initializing.
func (m *Machine) TryBeginInit() bool {
	if m.phase != PhaseUninitialized {
		return false
	}
	m.phase = PhaseInitializing
	return true
}

// EndInit finishes initialization. A failed init is terminal.
func (m *Machine) EndInit(ok bool) {
	if m.phase != PhaseInitializing {
		return
	}
	if !ok {
		m.phase = PhaseFailed
		return
	}
	m.enterIdle()
}

// TryBeginResize moves Idle to Resizing.
func (m *Machine) TryBeginResize() bool {
	if m.phase != PhaseIdle {
		return false
	}
	m.phase = PhaseResizing
	return true
}

// EndResize moves Resizing back to Idle.
func (m *Machine) EndResize() {
	if m.phase != PhaseResizing {
		return
	}
	m.enterIdle()
}

// Close makes the machine terminal.
func (m *Machine) Close() {
	m.phase = PhaseClosed
	m.seeking = false
	m.onIdle = nil
}

// BeginSeek raises the seeking flag.
func (m *Machine) BeginSeek() {
	m.seeking = true
}

// EndSeek clears the seeking flag.
func (m *Machine) EndSeek() {
	m.seeking = false
}

// Seeking reports whether a seek gesture is in progress.
func (m *Machine) Seeking() bool {
	return m.seeking
}

// Resizing reports whether a resize session is active.
func (m *Machine) Resizing() bool {
	return m.phase == PhaseResizing
}

// Initializing reports whether initialization is still running.
func (m *Machine) Initializing() bool {
	return m.phase == PhaseInitializing
}

// Busy reports whether a size change must not be acted on now.
func (m *Machine) Busy() bool {
	return m.phase == PhaseResizing || m.phase == PhaseInitializing
}

// CanPresent reports whether the presentation scheduler may render.
func (m *Machine) CanPresent() bool {
	return m.phase == PhaseIdle && !m.seeking
}

// CanReportProgress reports whether the progress timer may write the displayed position.
func (m *Machine) CanReportProgress() bool {
	return m.phase == PhaseIdle && !m.seeking
}

// WhenIdle runs fn the next time the machine enters Idle, or right away if it is Idle.
func (m *Machine) WhenIdle(fn func()) {
	if m.phase == PhaseIdle {
		fn()
		return
	}
	if m.phase == PhaseFailed || m.phase == PhaseClosed {
		return
	}
	m.onIdle = append(m.onIdle, fn)
}

func (m *Machine) enterIdle() {
	m.phase = PhaseIdle
	pending := m.onIdle
	m.onIdle = nil
	for _, fn := range pending {
		fn()
	}
}
