package ports

import (
	"image/color"
	"time"
)

// Compositor displays a shared surface handle.
type Compositor interface {
	// Attach starts displaying the surface behind the shared handle.
	Attach(shared SharedHandle) error

	// Detach drops the current shared handle. The last presented frame
	// stays on screen until the next Attach.
	Detach()

	// Invalidate marks the whole attached surface as changed.
	Invalidate()
}

// Bar is one histogram bar in view coordinates, origin at the top left.
type Bar struct {
	Channel int
	X       float64
	Y       float64
	Width   float64
	Height  float64
	Color   color.NRGBA
}

// HistogramView is the drawing target of the histogram chart.
type HistogramView interface {
	// Size returns the laid out size; zero until layout completes.
	Size() (width, height int)

	// Clear removes every bar.
	Clear()

	// Present replaces the chart with bars, drawn in slice order.
	Present(bars []Bar)
}

// Timer is a periodic tick source bound to the UI loop.
type Timer interface {
	Start()
	Stop()
	SetInterval(d time.Duration)
	Interval() time.Duration
	Running() bool
}

// Clock creates timers whose callbacks run on the UI loop.
type Clock interface {
	NewTimer(interval time.Duration, fn func()) Timer
}

// Poster queues work onto the UI loop. It is safe for concurrent use.
type Poster interface {
	// Post queues fn. It returns false when the loop no longer accepts work.
	Post(fn func()) bool
}
