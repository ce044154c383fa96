package mocks

import (
	"sync"
	"time"

	"github.com/user/editsurface/pkg/ports"
)

// Clock is a mock implementation of ports.Clock that hands out manual timers.
type Clock struct {
	mu     sync.Mutex
	Timers []*Timer
}

// NewClock creates a new mock Clock.
func NewClock() *Clock {
	return &Clock{}
}

func (c *Clock) NewTimer(interval time.Duration, fn func()) ports.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &Timer{interval: interval, fn: fn}
	c.Timers = append(c.Timers, t)
	return t
}

var _ ports.Clock = (*Clock)(nil)

// Timer is a manual ports.Timer. Ticks only happen through Fire.
type Timer struct {
	interval time.Duration
	fn       func()
	running  bool

	Starts    int
	Stops     int
	Intervals []time.Duration
}

func (t *Timer) Start() {
	t.Starts++
	t.running = true
}

func (t *Timer) Stop() {
	t.Stops++
	t.running = false
}

func (t *Timer) SetInterval(d time.Duration) {
	t.interval = d
	t.Intervals = append(t.Intervals, d)
}

func (t *Timer) Interval() time.Duration {
	return t.interval
}

func (t *Timer) Running() bool {
	return t.running
}

// Fire runs the callback once if the timer is running and reports whether it ran.
func (t *Timer) Fire() bool {
	if !t.running {
		return false
	}
	t.fn()
	return true
}

// FireN fires the timer n times.
func (t *Timer) FireN(n int) {
	for i := 0; i < n; i++ {
		t.Fire()
	}
}

var _ ports.Timer = (*Timer)(nil)

// Poster is a mock implementation of ports.Poster that queues work until Drain.
type Poster struct {
	mu     sync.Mutex
	queue  []func()
	Closed bool
	Posts  int
}

// NewPoster creates a new mock Poster.
func NewPoster() *Poster {
	return &Poster{}
}

func (p *Poster) Post(fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Closed {
		return false
	}
	p.Posts++
	p.queue = append(p.queue, fn)
	return true
}

// Pending returns the number of queued functions.
func (p *Poster) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Drain runs queued functions, including ones queued while draining, and returns how many ran.
func (p *Poster) Drain() int {
	n := 0
	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return n
		}
		fn := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()
		fn()
		n++
	}
}

var _ ports.Poster = (*Poster)(nil)
