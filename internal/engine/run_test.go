package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Mavwarf/reveil/internal/alarm"
	"github.com/Mavwarf/reveil/internal/playback"
)

func waitForPhase(t *testing.T, e *Engine, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.Status().Phase == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("engine never reached phase %q", want)
}

func TestRunFiresFromTickChannel(t *testing.T) {
	e, _ := newTestEngine()
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00"})

	ticks := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx, ticks)

	ticks <- tickAt(6, 59, 59)
	ticks <- tickAt(7, 0, 0)
	waitForPhase(t, e, "ringing")
}

func TestRunForwardsPlaybackEvents(t *testing.T) {
	s := newFakeSounder()
	toasts := &capturingToaster{}
	e := New(Options{Registry: alarm.NewRegistry(), Sounder: s, Toaster: toasts})

	ticks := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx, ticks)

	s.events <- playback.Event{Kind: playback.EventFailover, Message: "Failed to connect to Alpha, trying Beta…", Severity: "info"}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		toasts.mu.Lock()
		n := len(toasts.messages)
		var last string
		if n > 0 {
			last = toasts.messages[n-1]
		}
		toasts.mu.Unlock()
		if n > 0 {
			if !strings.Contains(last, "trying Beta") {
				t.Fatalf("unexpected toast %q", last)
			}
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("playback event never surfaced as a toast")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	e, s := newTestEngine()
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00"})

	ticks := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx, ticks)
		close(done)
	}()

	ticks <- tickAt(7, 0, 0)
	waitForPhase(t, e, "ringing")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return on cancel")
	}
	if e.Status().Phase != "idle" {
		t.Fatal("shutdown must stop a ringing alarm")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stops != 1 {
		t.Fatalf("expected playback stopped on shutdown, got %d stops", s.stops)
	}
}
