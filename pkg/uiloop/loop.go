// Package uiloop provides the single UI goroutine that owns the editing
// surface state, together with timers whose ticks run on it.
package uiloop

import (
	"context"
	"sync"
	"time"

	"github.com/user/editsurface/pkg/ports"
)

// Loop is a single-consumer task queue. Post may be called from any
// goroutine; queued functions run one at a time, in order, on the
// goroutine executing Run (or RunPending).
type Loop struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	logger ports.Logger
}

// New creates a new Loop.
func New(logger ports.Logger) *Loop {
	l := &Loop{logger: logger.WithComponent("uiloop")}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Post queues fn. It returns false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
	return true
}

// Call queues fn and waits until it has run. It must not be called from
// the loop goroutine itself.
func (l *Loop) Call(fn func()) bool {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return false
	}
	<-done
	return true
}

// Run executes queued functions until ctx is cancelled or Close is called.
// Work already queued when the loop closes still runs.
func (l *Loop) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, l.Close)
	defer stop()

	l.logger.Debug("UI loop started")
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			l.logger.Debug("UI loop stopped")
			return ctx.Err()
		}
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
	}
}

// RunPending runs everything queued so far, including work queued while
// it runs, and returns the number of functions executed.
func (l *Loop) RunPending() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return n
		}
		fn := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()
		fn()
		n++
	}
}

// Close stops accepting work and wakes Run.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.cond.Broadcast()
}

// NewTimer creates a stopped timer whose ticks are delivered to this loop.
func (l *Loop) NewTimer(interval time.Duration, fn func()) ports.Timer {
	return newTimer(l, interval, fn)
}

var (
	_ ports.Poster = (*Loop)(nil)
	_ ports.Clock  = (*Loop)(nil)
)
