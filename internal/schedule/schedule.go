// Package schedule provides the deferral primitives of the editor's single
// cooperative event loop: a task queue drained after the current message
// is handled, a per-frame work queue, and timers.
//
// None of the types here are safe for concurrent use; they are driven from
// the Bubble Tea Update loop.
package schedule

import (
	"slices"
	"time"
)

// Deferrer runs fn after the current synchronous work completes, before
// the next input is processed.
type Deferrer interface {
	Defer(fn func())
}

// Timers runs fn on the event loop once d has elapsed.
type Timers interface {
	After(d time.Duration, fn func())
}

// Queue is a FIFO of deferred tasks.
type Queue struct {
	tasks []func()
}

var _ Deferrer = (*Queue)(nil)

func (q *Queue) Defer(fn func()) {
	q.tasks = append(q.tasks, fn)
}

// Pending returns the number of queued tasks.
func (q *Queue) Pending() int { return len(q.tasks) }

// Drain runs queued tasks until the queue is empty, including tasks
// deferred while draining. It returns the number of tasks run.
func (q *Queue) Drain() int {
	n := 0
	for len(q.tasks) > 0 {
		batch := q.tasks
		q.tasks = nil
		for _, fn := range batch {
			fn()
			n++
		}
	}
	return n
}

// Frames coalesces work to one callback per key per display frame. A later
// request for a pending key replaces its callback but keeps its position.
type Frames struct {
	order []string
	fns   map[string]func()
}

func NewFrames() *Frames {
	return &Frames{fns: make(map[string]func())}
}

// Request schedules fn for the next frame. It reports whether the key was
// newly scheduled, false meaning it coalesced with a pending request.
func (f *Frames) Request(key string, fn func()) bool {
	_, pending := f.fns[key]
	f.fns[key] = fn
	if pending {
		return false
	}
	f.order = append(f.order, key)
	return true
}

// Cancel drops a pending request.
func (f *Frames) Cancel(key string) {
	if _, ok := f.fns[key]; !ok {
		return
	}
	delete(f.fns, key)
	f.order = slices.DeleteFunc(f.order, func(k string) bool { return k == key })
}

// Pending reports whether any work awaits the next frame.
func (f *Frames) Pending() bool { return len(f.order) > 0 }

// Flush runs every pending callback in request order. Requests made while
// flushing are deferred to the following frame.
func (f *Frames) Flush() int {
	order, fns := f.order, f.fns
	f.order, f.fns = nil, make(map[string]func())
	for _, k := range order {
		fns[k]()
	}
	return len(order)
}

type timer struct {
	delay time.Duration
	fn    func()
}

// TimerQueue collects requested timers for the event loop to arm.
type TimerQueue struct {
	timers []timer
}

var _ Timers = (*TimerQueue)(nil)

func (q *TimerQueue) After(d time.Duration, fn func()) {
	q.timers = append(q.timers, timer{delay: d, fn: fn})
}

// Take removes and returns the requested timers.
func (q *TimerQueue) Take(each func(d time.Duration, fn func())) {
	timers := q.timers
	q.timers = nil
	for _, t := range timers {
		each(t.delay, t.fn)
	}
}

// Debouncer runs only the last call made within a burst, delay after it.
type Debouncer struct {
	timers Timers
	delay  time.Duration
	gen    uint64
}

func NewDebouncer(timers Timers, delay time.Duration) *Debouncer {
	return &Debouncer{timers: timers, delay: delay}
}

// Call schedules fn, superseding any call still waiting.
func (d *Debouncer) Call(fn func()) {
	d.gen++
	gen := d.gen
	d.timers.After(d.delay, func() {
		if gen == d.gen {
			fn()
		}
	})
}

// Cancel drops the waiting call, if any.
func (d *Debouncer) Cancel() { d.gen++ }
