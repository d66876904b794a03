// Package frameloop schedules per-frame callbacks.
//
// A callback requested with RequestFrame runs once, in the next frame. To
// keep animating, a callback requests itself again. Requests made while a
// frame is running are deferred to the following frame.
package frameloop

import (
	"context"
	"time"
)

// FrameFunc is called with the time the frame started.
type FrameFunc func(now time.Time)

type Scheduler interface {
	// RequestFrame queues fn for the next frame. The returned function
	// cancels the request if it has not run yet; calling it again is a no-op.
	RequestFrame(fn FrameFunc) (cancel func())
}

type request struct {
	fn   FrameFunc
	done bool
}

type queue struct {
	pending []*request
}

func (q *queue) RequestFrame(fn FrameFunc) func() {
	r := &request{fn: fn}
	q.pending = append(q.pending, r)
	return func() {
		if r.done {
			return
		}
		r.done = true
		for i, p := range q.pending {
			if p == r {
				q.pending = append(q.pending[:i], q.pending[i+1:]...)
				return
			}
		}
	}
}

// step runs every request queued before it was called and returns how many ran.
func (q *queue) step(now time.Time) int {
	batch := q.pending
	q.pending = nil

	ran := 0
	for _, r := range batch {
		if r.done {
			continue
		}
		r.done = true
		r.fn(now)
		ran++
	}
	return ran
}

// Manual is a Scheduler driven explicitly by Step, for tests and
// headless use.
type Manual struct {
	queue
}

func NewManual() *Manual {
	return &Manual{}
}

// Step runs one frame and returns the number of callbacks run.
func (m *Manual) Step(now time.Time) int {
	return m.step(now)
}

func (m *Manual) Pending() int {
	return len(m.pending)
}

// Window is the part of a window the Loop drives.
type Window interface {
	ShouldClose() bool
	PollEvents()
	SwapBuffers()
}

// Loop runs frames against a window: poll input, run callbacks, present.
type Loop struct {
	queue
	window Window
	now    func() time.Time

	// IdleDelay is slept when a frame had nothing to run, so a stopped
	// animation does not spin the CPU.
	IdleDelay time.Duration

	frames uint64
}

func NewLoop(window Window) *Loop {
	return &Loop{
		window:    window,
		now:       time.Now,
		IdleDelay: 10 * time.Millisecond,
	}
}

// Run blocks until the window asks to close (returning nil) or ctx is
// done (returning ctx.Err()). Must be called from the thread that owns the
// window.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if l.window.ShouldClose() {
			return nil
		}

		l.window.PollEvents()
		if l.step(l.now()) > 0 {
			l.window.SwapBuffers()
			l.frames++
		} else if l.IdleDelay > 0 {
			time.Sleep(l.IdleDelay)
		}
	}
}

// Frames reports how many frames have been presented.
func (l *Loop) Frames() uint64 {
	return l.frames
}

func (l *Loop) Pending() int {
	return len(l.pending)
}
