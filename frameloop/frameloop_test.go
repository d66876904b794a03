package frameloop

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestManualRunsEachRequestOnce(t *testing.T) {
	m := NewManual()
	count := 0
	m.RequestFrame(func(time.Time) { count++ })

	if ran := m.Step(time.Now()); ran != 1 {
		t.Errorf("expected 1 callback, got %d", ran)
	}
	if ran := m.Step(time.Now()); ran != 0 {
		t.Errorf("expected nothing on the second step, got %d", ran)
	}
	if count != 1 {
		t.Errorf("expected callback to run once, ran %d times", count)
	}
}

func TestManualPassesFrameTime(t *testing.T) {
	m := NewManual()
	want := time.Unix(1700000000, 0)
	var got time.Time
	m.RequestFrame(func(now time.Time) { got = now })
	m.Step(want)
	if !got.Equal(want) {
		t.Errorf("expected frame time %v, got %v", want, got)
	}
}

func TestManualRequestDuringFrameIsDeferred(t *testing.T) {
	m := NewManual()
	frames := 0
	var tick FrameFunc
	tick = func(time.Time) {
		frames++
		m.RequestFrame(tick)
	}
	m.RequestFrame(tick)

	for i := 0; i < 3; i++ {
		if ran := m.Step(time.Now()); ran != 1 {
			t.Fatalf("step %d: expected exactly 1 callback, got %d", i, ran)
		}
	}
	if frames != 3 {
		t.Errorf("expected 3 frames, got %d", frames)
	}
	if m.Pending() != 1 {
		t.Errorf("expected the next frame to be pending, got %d", m.Pending())
	}
}

func TestManualCancel(t *testing.T) {
	m := NewManual()
	ran := false
	cancel := m.RequestFrame(func(time.Time) { ran = true })

	cancel()
	cancel()
	if m.Pending() != 0 {
		t.Errorf("expected no pending requests after cancel, got %d", m.Pending())
	}
	m.Step(time.Now())
	if ran {
		t.Errorf("cancelled callback ran")
	}
}

func TestCancelWithinSameFrame(t *testing.T) {
	m := NewManual()
	secondRan := false
	var cancelSecond func()
	m.RequestFrame(func(time.Time) { cancelSecond() })
	cancelSecond = m.RequestFrame(func(time.Time) { secondRan = true })

	if ran := m.Step(time.Now()); ran != 1 {
		t.Errorf("expected 1 callback to run, got %d", ran)
	}
	if secondRan {
		t.Errorf("callback cancelled earlier in the frame still ran")
	}
}

func TestCancelAfterRunIsNoop(t *testing.T) {
	m := NewManual()
	cancel := m.RequestFrame(func(time.Time) {})
	m.Step(time.Now())
	cancel()

	other := false
	m.RequestFrame(func(time.Time) { other = true })
	cancel()
	m.Step(time.Now())
	if !other {
		t.Errorf("stale cancel removed an unrelated request")
	}
}

type fakeWindow struct {
	closeAfter int
	polls      int
	swaps      int
}

func (w *fakeWindow) ShouldClose() bool { return w.polls >= w.closeAfter }
func (w *fakeWindow) PollEvents()       { w.polls++ }
func (w *fakeWindow) SwapBuffers()      { w.swaps++ }

func TestLoopRunsUntilWindowCloses(t *testing.T) {
	w := &fakeWindow{closeAfter: 5}
	l := NewLoop(w)
	l.IdleDelay = 0

	frames := 0
	var tick FrameFunc
	tick = func(time.Time) {
		frames++
		l.RequestFrame(tick)
	}
	l.RequestFrame(tick)

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if frames != 5 {
		t.Errorf("expected 5 frames, got %d", frames)
	}
	if w.swaps != 5 || l.Frames() != 5 {
		t.Errorf("expected 5 presents, got swaps=%d frames=%d", w.swaps, l.Frames())
	}
}

func TestLoopSkipsPresentWhenIdle(t *testing.T) {
	w := &fakeWindow{closeAfter: 3}
	l := NewLoop(w)
	l.IdleDelay = 0

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if w.swaps != 0 {
		t.Errorf("expected no presents without requests, got %d", w.swaps)
	}
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	w := &fakeWindow{closeAfter: 1 << 30}
	l := NewLoop(w)
	l.IdleDelay = 0

	ctx, cancel := context.WithCancel(context.Background())
	frames := 0
	var tick FrameFunc
	tick = func(time.Time) {
		frames++
		if frames == 3 {
			cancel()
		}
		l.RequestFrame(tick)
	}
	l.RequestFrame(tick)

	err := l.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if frames != 3 {
		t.Errorf("expected the loop to stop after 3 frames, got %d", frames)
	}
}
