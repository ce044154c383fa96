package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/user/editsurface/pkg/adapters/logger"
	"github.com/user/editsurface/pkg/lifecycle"
	"github.com/user/editsurface/pkg/mocks"
	"github.com/user/editsurface/pkg/ports"
	"github.com/user/editsurface/pkg/surface"
)

type fakePlayback struct{ playing bool }

func (p *fakePlayback) IsPlayingVideo() bool { return p.playing }

type countingSampler struct{ n int }

func (s *countingSampler) Trigger() { s.n++ }

type fixture struct {
	sched      *Scheduler
	timer      *mocks.Timer
	backend    *mocks.Backend
	compositor *mocks.Compositor
	target     *surface.Target
	machine    *lifecycle.Machine
	playback   *fakePlayback
	sampler    *countingSampler
	log        *mocks.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := mocks.NewClock()
	backend := mocks.NewBackend()
	compositor := mocks.NewCompositor()
	target := surface.New(backend, compositor, logger.NewNoop())
	if err := target.Create(800, 600); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	machine := lifecycle.New()
	machine.TryBeginInit()
	machine.EndInit(true)

	log := mocks.NewLogger()
	s := New(clock, backend, target, machine, log, Options{})
	playback := &fakePlayback{}
	sampler := &countingSampler{}
	s.SetPlayback(playback)
	s.SetSampler(sampler)
	s.Start()
	backend.ResetCalls()

	return &fixture{
		sched:      s,
		timer:      clock.Timers[0],
		backend:    backend,
		compositor: compositor,
		target:     target,
		machine:    machine,
		playback:   playback,
		sampler:    sampler,
		log:        log,
	}
}

func TestScheduler_DefaultInterval(t *testing.T) {
	f := newFixture(t)
	if f.sched.Interval() != 16*time.Millisecond {
		t.Errorf("expected 16ms, got %v", f.sched.Interval())
	}
	if !f.sched.Running() {
		t.Error("expected scheduler to run after Start")
	}
}

func TestScheduler_NoSurfaceNoop(t *testing.T) {
	f := newFixture(t)
	f.target.Destroy()
	f.backend.ResetCalls()

	f.timer.Fire()
	if len(f.backend.Calls) != 0 {
		t.Errorf("expected no backend calls, got %v", f.backend.Calls)
	}
}

func TestScheduler_StaticRenderAndPublish(t *testing.T) {
	f := newFixture(t)
	before := f.compositor.Invalidates

	f.timer.Fire()
	if f.backend.Count("RenderStatic") != 1 {
		t.Errorf("expected a static render, got %v", f.backend.Calls)
	}
	if f.compositor.Invalidates != before+1 {
		t.Error("expected whole-surface invalidate after render")
	}
}

func TestScheduler_PlayingVideoAdvances(t *testing.T) {
	f := newFixture(t)
	f.playback.playing = true

	f.timer.FireN(3)
	if f.backend.Count("RenderNextVideoFrame") != 3 {
		t.Errorf("expected 3 video frames, got %v", f.backend.Calls)
	}
	if f.backend.Count("RenderStatic") != 0 {
		t.Error("expected no static render while playing")
	}
}

func TestScheduler_PausedDuringResizeAndSeek(t *testing.T) {
	f := newFixture(t)

	f.machine.TryBeginResize()
	f.timer.Fire()
	f.machine.EndResize()

	f.machine.BeginSeek()
	f.timer.Fire()
	f.machine.EndSeek()

	if len(f.backend.Calls) != 0 {
		t.Errorf("expected no renders while resizing or seeking, got %v", f.backend.Calls)
	}

	// Resumes without any explicit call.
	f.timer.Fire()
	if f.backend.Count("RenderStatic") != 1 {
		t.Error("expected rendering to resume")
	}
}

func TestScheduler_FailureKeepsTicking(t *testing.T) {
	f := newFixture(t)
	fail := true
	f.backend.RenderStaticFunc = func(h ports.SurfaceHandle) error {
		if fail {
			return errors.New("device removed")
		}
		return nil
	}
	before := f.compositor.Invalidates

	f.timer.FireN(5)
	if !f.timer.Running() {
		t.Fatal("expected timer to keep running after failures")
	}
	if f.compositor.Invalidates != before {
		t.Error("expected nothing published on failure")
	}
	if n := len(f.log.Warnings()); n != 1 {
		t.Errorf("expected one warning for the failure streak, got %d", n)
	}

	fail = false
	f.timer.Fire()
	if f.compositor.Invalidates != before+1 {
		t.Error("expected publishing to recover")
	}

	fail = true
	f.timer.Fire()
	if n := len(f.log.Warnings()); n != 2 {
		t.Errorf("expected a new warning for a new streak, got %d", n)
	}
}

func TestScheduler_HistogramEveryTenthSuccess(t *testing.T) {
	f := newFixture(t)
	calls := 0
	f.backend.RenderStaticFunc = func(h ports.SurfaceHandle) error {
		calls++
		if calls%2 == 0 {
			return errors.New("skip")
		}
		return nil
	}

	// 20 ticks, 10 successes.
	f.timer.FireN(20)
	if f.sampler.n != 1 {
		t.Errorf("expected one histogram trigger, got %d", f.sampler.n)
	}

	f.backend.RenderStaticFunc = nil
	f.timer.FireN(10)
	if f.sampler.n != 2 {
		t.Errorf("expected second trigger after 10 more successes, got %d", f.sampler.n)
	}
}

func TestScheduler_Cadence(t *testing.T) {
	f := newFixture(t)

	f.sched.SetFrameRate(30)
	if got := f.sched.Interval(); got < 33*time.Millisecond || got > 34*time.Millisecond {
		t.Errorf("expected ~33.3ms for 30fps, got %v", got)
	}
	f.sched.SetFrameRate(25)
	if got := f.sched.Interval(); got != 40*time.Millisecond {
		t.Errorf("expected 40ms for 25fps, got %v", got)
	}
	f.sched.ResetCadence()
	if got := f.sched.Interval(); got != DefaultInterval {
		t.Errorf("expected reset to 16ms, got %v", got)
	}
	f.sched.SetFrameRate(0)
	if got := f.sched.Interval(); got != DefaultInterval {
		t.Errorf("expected unknown frame rate to keep 16ms, got %v", got)
	}
}

func TestScheduler_RefreshWhilePaused(t *testing.T) {
	f := newFixture(t)

	f.sched.Refresh()
	if f.backend.Count("RenderStatic") != 1 {
		t.Error("expected refresh to render the static frame")
	}

	f.playback.playing = true
	f.sched.Refresh()
	if f.backend.Count("RenderStatic") != 1 {
		t.Error("expected refresh to leave a playing video to the next tick")
	}
}
