package uiloop

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer posts its callback to a Loop at a fixed interval. At most one tick
// is queued at a time: ticks that arrive while one is still waiting in the
// queue are dropped and counted.
type Timer struct {
	loop *Loop
	fn   func()

	mu       sync.Mutex
	interval time.Duration
	running  bool
	gen      uint64
	done     chan struct{}
	reset    chan time.Duration

	pending atomic.Bool
	drops   atomic.Uint64
}

func newTimer(loop *Loop, interval time.Duration, fn func()) *Timer {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Timer{
		loop:     loop,
		fn:       fn,
		interval: interval,
		reset:    make(chan time.Duration, 1),
	}
}

// Start begins ticking. Starting a running timer does nothing.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.gen++
	t.done = make(chan struct{})
	go t.run(t.done, t.interval, t.gen)
}

// Stop halts ticking. A tick already queued on the loop is discarded.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	close(t.done)
}

// SetInterval changes the tick interval, also while running.
func (t *Timer) SetInterval(d time.Duration) {
	if d <= 0 {
		d = time.Millisecond
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interval = d
	if !t.running {
		return
	}
	select {
	case <-t.reset:
	default:
	}
	t.reset <- d
}

// Interval returns the current tick interval.
func (t *Timer) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

// Running reports whether the timer is started.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Dropped returns how many ticks were coalesced away.
func (t *Timer) Dropped() uint64 {
	return t.drops.Load()
}

func (t *Timer) run(done <-chan struct{}, interval time.Duration, gen uint64) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case d := <-t.reset:
			ticker.Reset(d)
		case <-ticker.C:
			t.fire(gen)
		}
	}
}

func (t *Timer) fire(gen uint64) {
	if !t.pending.CompareAndSwap(false, true) {
		t.drops.Add(1)
		return
	}
	posted := t.loop.Post(func() {
		t.pending.Store(false)
		t.mu.Lock()
		live := t.running && t.gen == gen
		t.mu.Unlock()
		if live {
			t.fn()
		}
	})
	if !posted {
		t.pending.Store(false)
	}
}
