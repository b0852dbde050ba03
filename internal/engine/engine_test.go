package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/Mavwarf/reveil/internal/alarm"
	"github.com/Mavwarf/reveil/internal/playback"
)

// fakeSounder records start/stop calls without touching audio.
type fakeSounder struct {
	mu      sync.Mutex
	started []string
	volumes []int
	stops   int
	events  chan playback.Event
}

func newFakeSounder() *fakeSounder {
	return &fakeSounder{events: make(chan playback.Event, 4)}
}

func (f *fakeSounder) Start(soundID string, volume int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, soundID)
	f.volumes = append(f.volumes, volume)
	return "tok"
}

func (f *fakeSounder) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeSounder) SetVolume(volume int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumes = append(f.volumes, volume)
}

func (f *fakeSounder) Events() <-chan playback.Event { return f.events }

func (f *fakeSounder) Current() playback.Info {
	return playback.Info{Status: "idle"}
}

func (f *fakeSounder) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.started)
}

type capturingToaster struct {
	mu       sync.Mutex
	messages []string
}

func (c *capturingToaster) Toast(message, severity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

type capturingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (c *capturingNotifier) Notify(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

func (c *capturingNotifier) wait(t *testing.T) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		if len(c.messages) > 0 {
			msg := c.messages[0]
			c.mu.Unlock()
			return msg
		}
		c.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	t.Fatal("notification never arrived")
	return ""
}

func newTestEngine() (*Engine, *fakeSounder) {
	s := newFakeSounder()
	e := New(Options{
		Registry: alarm.NewRegistry(),
		Sounder:  s,
		Toaster:  &capturingToaster{},
	})
	return e, s
}

func tickAt(h, m, s int) time.Time {
	return time.Date(2026, 8, 29, h, m, s, 0, time.Local)
}

func TestTickFiresMatchingAlarm(t *testing.T) {
	e, s := newTestEngine()
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00", Sound: "chime", Volume: 60})

	e.Tick(tickAt(7, 0, 0))

	if got := e.Status(); got.Phase != "ringing" || got.Active == nil || got.Active.ID != "a" {
		t.Fatalf("expected ringing on a, got %+v", got)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.started) != 1 || s.started[0] != "chime" || s.volumes[0] != 60 {
		t.Fatalf("unexpected sounder calls: %v %v", s.started, s.volumes)
	}
}

func TestTickNoMatchStaysIdle(t *testing.T) {
	e, s := newTestEngine()
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00"})

	e.Tick(tickAt(6, 59, 59))

	if e.Status().Phase != "idle" {
		t.Fatal("expected idle before the alarm minute")
	}
	if s.startCount() != 0 {
		t.Fatal("sounder started without a match")
	}
}

func TestAtMostOneActive(t *testing.T) {
	// Two alarms share a time; only the first may ring, and repeated
	// ticks in the same minute must not fire the second.
	e, s := newTestEngine()
	e.Registry().Add(alarm.Alarm{ID: "first", Time: "07:00", Recurring: true})
	e.Registry().Add(alarm.Alarm{ID: "second", Time: "07:00"})

	e.Tick(tickAt(7, 0, 0))
	e.Tick(tickAt(7, 0, 1))
	e.Tick(tickAt(7, 0, 30))

	st := e.Status()
	if st.Phase != "ringing" || st.Active.ID != "first" {
		t.Fatalf("expected first alarm ringing, got %+v", st)
	}
	if s.startCount() != 1 {
		t.Fatalf("expected exactly one playback start, got %d", s.startCount())
	}
}

func TestStopRemovesOneShot(t *testing.T) {
	e, _ := newTestEngine()
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00"})

	e.Tick(tickAt(7, 0, 0))
	e.Stop()

	if e.Status().Phase != "idle" {
		t.Fatal("expected idle after stop")
	}
	if _, ok := e.Registry().Get("a"); ok {
		t.Fatal("one-shot alarm must leave the registry on stop")
	}
	// Same minute, later tick: must not refire.
	e.Tick(tickAt(7, 0, 40))
	if e.Status().Phase != "idle" {
		t.Fatal("one-shot alarm refired within the same minute")
	}
}

func TestStopKeepsRecurring(t *testing.T) {
	e, _ := newTestEngine()
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00", Recurring: true})

	e.Tick(tickAt(7, 0, 0))
	e.Stop()

	if _, ok := e.Registry().Get("a"); !ok {
		t.Fatal("recurring alarm must survive stop")
	}
}

func TestStopRecurringDoesNotRefireSameMinute(t *testing.T) {
	e, s := newTestEngine()
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00", Recurring: true})

	e.Tick(tickAt(7, 0, 0))
	e.Stop()

	// The alarm stays registered, but later ticks in the dismissed
	// minute must not restart the ring.
	e.Tick(tickAt(7, 0, 11))
	e.Tick(tickAt(7, 0, 59))
	if e.Status().Phase != "idle" {
		t.Fatal("recurring alarm re-fired in the same minute after stop")
	}
	if s.startCount() != 1 {
		t.Fatalf("expected one playback start, got %d", s.startCount())
	}
	// The next occurrence still fires.
	e.Tick(time.Date(2026, 8, 30, 7, 0, 0, 0, time.Local))
	if e.Status().Phase != "ringing" {
		t.Fatal("recurring alarm must fire at its next occurrence")
	}
}

func TestSnoozeRecurringDoesNotRefireSameMinute(t *testing.T) {
	e, s := newTestEngine()
	e.now = func() time.Time { return tickAt(7, 0, 10) }
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00", Recurring: true})

	e.Tick(tickAt(7, 0, 0))
	e.Snooze(5)

	e.Tick(tickAt(7, 0, 30))
	if e.Status().Phase != "idle" {
		t.Fatal("snoozed recurring alarm re-fired in its own minute")
	}
	if s.startCount() != 1 {
		t.Fatalf("expected one playback start, got %d", s.startCount())
	}
	// The derived snooze alarm fires at its scheduled minute.
	e.Tick(tickAt(7, 5, 0))
	st := e.Status()
	if st.Phase != "ringing" || st.Active == nil || st.Active.Recurring {
		t.Fatalf("expected derived snooze alarm ringing, got %+v", st)
	}
}

func TestStopRemovesDateScopedEvenIfRecurring(t *testing.T) {
	e, _ := newTestEngine()
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00", Recurring: true, ReminderDate: "2026-08-29"})

	e.Tick(tickAt(7, 0, 0))
	e.Stop()

	if _, ok := e.Registry().Get("a"); ok {
		t.Fatal("date-scoped alarm must leave the registry on stop")
	}
}

func TestStopIdempotent(t *testing.T) {
	e, s := newTestEngine()
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00"})

	e.Tick(tickAt(7, 0, 0))
	e.Stop()
	e.Stop() // second stop from idle must be a silent no-op

	if e.Status().Phase != "idle" {
		t.Fatal("expected idle")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stops != 1 {
		t.Fatalf("expected one sounder stop, got %d", s.stops)
	}
}

func TestSnoozeSchedulesDerivedAlarm(t *testing.T) {
	e, s := newTestEngine()
	e.now = func() time.Time { return tickAt(7, 30, 10) }
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:30", Label: "work", Sound: "pulse", Volume: 70})

	e.Tick(tickAt(7, 30, 0))
	e.Snooze(5)

	if e.Status().Phase != "idle" {
		t.Fatal("expected idle immediately after snooze")
	}
	if s.stops != 1 {
		t.Fatal("snooze must stop playback")
	}

	list := e.Registry().List()
	if len(list) != 1 {
		t.Fatalf("expected only the derived alarm, got %+v", list)
	}
	derived := list[0]
	if derived.Time != "07:35" {
		t.Fatalf("expected snooze time 07:35, got %q", derived.Time)
	}
	if derived.Label != "work" || derived.Sound != "pulse" || derived.Volume != 70 {
		t.Fatalf("derived alarm must inherit label/sound/volume: %+v", derived)
	}
	if derived.Recurring || derived.ReminderDate != "" {
		t.Fatalf("derived alarm must be a plain one-shot: %+v", derived)
	}
}

func TestSnoozeKeepsRecurringOriginal(t *testing.T) {
	e, _ := newTestEngine()
	e.now = func() time.Time { return tickAt(7, 0, 5) }
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00", Recurring: true})

	e.Tick(tickAt(7, 0, 0))
	e.Snooze(10)

	if _, ok := e.Registry().Get("a"); !ok {
		t.Fatal("recurring original must survive snooze")
	}
	if e.Registry().Len() != 2 {
		t.Fatalf("expected original + derived, got %d", e.Registry().Len())
	}
}

func TestSnoozeDefaultDuration(t *testing.T) {
	e, _ := newTestEngine()
	e.now = func() time.Time { return tickAt(8, 0, 0) }
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "08:00"})

	e.Tick(tickAt(8, 0, 0))
	e.Snooze(0)

	list := e.Registry().List()
	if len(list) != 1 || list[0].Time != "08:05" {
		t.Fatalf("expected default %d-minute snooze, got %+v", DefaultSnoozeMinutes, list)
	}
}

func TestSnoozeWhileIdleIsNoOp(t *testing.T) {
	e, s := newTestEngine()
	e.Snooze(5)
	if s.stops != 0 || e.Registry().Len() != 0 {
		t.Fatal("snooze from idle must do nothing")
	}
}

func TestFireSendsNotification(t *testing.T) {
	s := newFakeSounder()
	n := &capturingNotifier{}
	e := New(Options{Registry: alarm.NewRegistry(), Sounder: s, Notifier: n})
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00", Label: "standup", ShowNotification: true})

	e.Tick(tickAt(7, 0, 0))

	if got := n.wait(t); got != "standup" {
		t.Fatalf("expected label in notification, got %q", got)
	}
}

func TestFireDefaultNotificationText(t *testing.T) {
	s := newFakeSounder()
	n := &capturingNotifier{}
	e := New(Options{Registry: alarm.NewRegistry(), Sounder: s, Notifier: n})
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00", ShowNotification: true})

	e.Tick(tickAt(7, 0, 0))

	if got := n.wait(t); got != DefaultNotificationText {
		t.Fatalf("expected default text, got %q", got)
	}
}

func TestFireWithoutNotificationFlag(t *testing.T) {
	s := newFakeSounder()
	n := &capturingNotifier{}
	e := New(Options{Registry: alarm.NewRegistry(), Sounder: s, Notifier: n})
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00", Label: "quiet"})

	e.Tick(tickAt(7, 0, 0))
	time.Sleep(10 * time.Millisecond)

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) != 0 {
		t.Fatal("notification sent despite flag off")
	}
}

func TestSetVolumeWhileRinging(t *testing.T) {
	e, s := newTestEngine()
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00", Volume: 50})

	e.Tick(tickAt(7, 0, 0))
	e.SetVolume(90)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.volumes[len(s.volumes)-1] != 90 {
		t.Fatalf("expected live volume 90, got %v", s.volumes)
	}
}

func TestRecurringRefiresNextDay(t *testing.T) {
	e, _ := newTestEngine()
	e.Registry().Add(alarm.Alarm{ID: "a", Time: "07:00", Recurring: true})

	e.Tick(tickAt(7, 0, 0))
	e.Stop()

	nextDay := time.Date(2026, 8, 30, 7, 0, 0, 0, time.Local)
	e.Tick(nextDay)
	if e.Status().Phase != "ringing" {
		t.Fatal("recurring alarm must fire again the next day")
	}
}
