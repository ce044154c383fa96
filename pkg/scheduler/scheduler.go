// Package scheduler drives per-frame presentation of the render surface.
package scheduler

import (
	"time"

	"github.com/user/editsurface/pkg/lifecycle"
	"github.com/user/editsurface/pkg/ports"
)

const (
	// DefaultInterval is the static presentation cadence.
	DefaultInterval = 16 * time.Millisecond

	// DefaultHistogramEvery is the number of successful ticks between histogram samples.
	DefaultHistogramEvery = 10
)

// Surface is the part of the render target the scheduler needs.
type Surface interface {
	Handle() ports.SurfaceHandle
	Usable() bool
	Invalidate()
}

// Playback reports whether a video should advance on this tick.
type Playback interface {
	IsPlayingVideo() bool
}

// Sampler is triggered every N successful ticks.
type Sampler interface {
	Trigger()
}

// Options configures the scheduler.
type Options struct {
	Interval       time.Duration
	HistogramEvery int
}

// Scheduler decides on each tick whether to advance a video frame,
// re-render a static frame or do nothing.
type Scheduler struct {
	backend  ports.Backend
	surface  Surface
	machine  *lifecycle.Machine
	playback Playback
	sampler  Sampler
	logger   ports.Logger
	timer    ports.Timer

	defaultInterval time.Duration
	histogramEvery  int
	successes       int
	failing         bool
	presented       uint64
}

// New creates a stopped scheduler whose ticks are delivered by clock.
func New(clock ports.Clock, backend ports.Backend, surface Surface, machine *lifecycle.Machine, logger ports.Logger, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.HistogramEvery <= 0 {
		opts.HistogramEvery = DefaultHistogramEvery
	}
	s := &Scheduler{
		backend:         backend,
		surface:         surface,
		machine:         machine,
		logger:          logger.WithComponent("scheduler"),
		defaultInterval: opts.Interval,
		histogramEvery:  opts.HistogramEvery,
	}
	s.timer = clock.NewTimer(opts.Interval, s.Tick)
	return s
}

// SetPlayback sets the source of the playing flag.
func (s *Scheduler) SetPlayback(p Playback) {
	s.playback = p
}

// SetSampler sets the component triggered every N successful ticks.
func (s *Scheduler) SetSampler(sm Sampler) {
	s.sampler = sm
}

// Start begins ticking.
func (s *Scheduler) Start() {
	s.timer.Start()
}

// Stop halts ticking.
func (s *Scheduler) Stop() {
	s.timer.Stop()
}

// Running reports whether the tick timer is active.
func (s *Scheduler) Running() bool {
	return s.timer.Running()
}

// Interval returns the current tick interval.
func (s *Scheduler) Interval() time.Duration {
	return s.timer.Interval()
}

// SetFrameRate retunes the cadence to 1000/fps milliseconds.
func (s *Scheduler) SetFrameRate(fps float64) {
	if fps <= 0 {
		s.ResetCadence()
		return
	}
	d := time.Duration(float64(time.Second) / fps)
	if d < time.Millisecond {
		d = time.Millisecond
	}
	s.timer.SetInterval(d)
	s.logger.Debug("Presentation cadence set to %v (%.2f fps)", d, fps)
}

// ResetCadence reverts to the default interval.
func (s *Scheduler) ResetCadence() {
	s.timer.SetInterval(s.defaultInterval)
}

// Presented returns the number of frames published so far.
func (s *Scheduler) Presented() uint64 {
	return s.presented
}

// Tick runs one presentation step. Failures are logged once per streak and
// never stop the timer.
func (s *Scheduler) Tick() {
	if !s.surface.Usable() || !s.machine.CanPresent() {
		return
	}

	var err error
	if s.playback != nil && s.playback.IsPlayingVideo() {
		err = s.backend.RenderNextVideoFrame(s.surface.Handle())
	} else {
		err = s.backend.RenderStatic(s.surface.Handle())
	}
	if err != nil {
		if !s.failing {
			s.logger.Warn("Frame render failed: %v", err)
		}
		s.failing = true
		return
	}
	if s.failing {
		s.logger.Debug("Frame rendering recovered")
		s.failing = false
	}

	s.surface.Invalidate()
	s.presented++
	s.successes++
	if s.successes%s.histogramEvery == 0 && s.sampler != nil {
		s.sampler.Trigger()
	}
}

// Refresh renders and publishes the current static frame right away. It
// obeys the same guards as Tick and is used after parameter changes while
// playback is paused.
func (s *Scheduler) Refresh() {
	if !s.surface.Usable() || !s.machine.CanPresent() {
		return
	}
	if s.playback != nil && s.playback.IsPlayingVideo() {
		// The next tick picks the change up.
		return
	}
	if err := s.backend.RenderStatic(s.surface.Handle()); err != nil {
		s.logger.Warn("Frame render failed: %v", err)
		return
	}
	s.surface.Invalidate()
	s.presented++
}
