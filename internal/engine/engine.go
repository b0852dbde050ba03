package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Mavwarf/reveil/internal/alarm"
	"github.com/Mavwarf/reveil/internal/playback"
)

// Phase is the alarm state machine's phase. Snooze is modeled as a
// return to Idle with a derived one-shot alarm scheduled, so only two
// phases exist at runtime.
type Phase int

const (
	Idle Phase = iota
	Ringing
)

func (p Phase) String() string {
	if p == Ringing {
		return "ringing"
	}
	return "idle"
}

// DefaultSnoozeMinutes is used when a snooze request carries no duration.
const DefaultSnoozeMinutes = 5

// DefaultNotificationText is shown when a firing alarm has no label.
const DefaultNotificationText = "Wake up!"

// Sounder starts and stops audio for the engine. Only the engine talks
// to it; satisfied by *playback.Manager.
type Sounder interface {
	Start(soundID string, volume int) string
	Stop()
	SetVolume(volume int)
	Events() <-chan playback.Event
	Current() playback.Info
}

// Notifier delivers fire notifications outward. It must be best-effort:
// a failed notification never affects ringing, so implementations
// swallow their own errors.
type Notifier interface {
	Notify(message string)
}

// Toaster receives short UI feedback messages with a severity of
// "info" or "error".
type Toaster interface {
	Toast(message, severity string)
}

// History records ring lifecycle events. Best-effort; errors are the
// implementation's problem.
type History interface {
	Record(kind, alarmID, label, detail string)
}

// Engine owns the alarm state machine: it matches ticks against the
// registry, holds the at-most-one active alarm, and runs the fire/stop/
// snooze transitions. All methods serialize on one mutex, so the side
// effects of a transition complete before the next tick or user action
// is considered.
type Engine struct {
	registry *alarm.Registry
	sounder  Sounder
	notifier Notifier
	toaster  Toaster
	history  History

	snoozeMinutes int
	now           func() time.Time

	mu       sync.Mutex
	phase    Phase
	active   alarm.Alarm
	lastRing time.Time // minute (truncated) of the most recent fire
}

// Options wires an Engine. Notifier, Toaster and History may be nil.
type Options struct {
	Registry      *alarm.Registry
	Sounder       Sounder
	Notifier      Notifier
	Toaster       Toaster
	History       History
	SnoozeMinutes int
}

func New(opts Options) *Engine {
	snooze := opts.SnoozeMinutes
	if snooze <= 0 {
		snooze = DefaultSnoozeMinutes
	}
	return &Engine{
		registry:      opts.Registry,
		sounder:       opts.Sounder,
		notifier:      opts.Notifier,
		toaster:       opts.Toaster,
		history:       opts.History,
		snoozeMinutes: snooze,
		now:           time.Now,
	}
}

// Registry exposes the alarm registry for the mutation surfaces
// (dashboard, config preload).
func (e *Engine) Registry() *alarm.Registry {
	return e.registry
}

// SetToaster installs the feedback sink after construction. The
// dashboard server both consumes the engine and receives its toasts,
// so one of the two has to be wired late.
func (e *Engine) SetToaster(t Toaster) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.toaster = t
}

// SetHistory installs the ring-history recorder after construction.
func (e *Engine) SetHistory(h History) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = h
}

// Tick evaluates the registry against now. While an alarm is active the
// tick is a no-op, which is what makes a second alarm in the same
// minute a lost wakeup instead of a concurrent ring.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != Idle {
		return
	}
	if now.Truncate(time.Minute).Equal(e.lastRing) {
		// A recurring alarm dismissed seconds into its minute would
		// rematch the same HH:MM and restart the ring.
		return
	}
	a, ok := alarm.Match(now, e.registry.List())
	if !ok {
		return
	}
	e.fire(a, now)
}

// fire runs the Idle → Ringing transition. Caller holds e.mu.
func (e *Engine) fire(a alarm.Alarm, now time.Time) {
	e.phase = Ringing
	e.active = a
	e.lastRing = now.Truncate(time.Minute)
	e.sounder.Start(a.Sound, a.Volume)

	label := a.Label
	if label == "" {
		label = DefaultNotificationText
	}
	e.toast(fmt.Sprintf("Alarm ringing: %s", label), "info")
	e.record("fired", a.ID, a.Label, a.Sound)
	if a.ShowNotification && e.notifier != nil {
		// Fire-and-forget; a hung notification backend must not stall
		// the tick loop.
		go e.notifier.Notify(label)
	}
}

// Stop runs the Ringing → Idle transition: playback halts and one-shot
// alarms (including date-scoped ones, whose date has now passed) leave
// the registry. Recurring alarms stay registered; Tick skips the fired
// minute so they can't restart the ring the second after a dismissal.
// Stopping while Idle is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != Ringing {
		return
	}
	a := e.active
	e.sounder.Stop()
	if a.OneShot() {
		e.registry.Remove(a.ID)
	}
	e.phase = Idle
	e.active = alarm.Alarm{}
	e.toast("Alarm stopped", "info")
	e.record("stopped", a.ID, a.Label, "")
}

// Snooze stops the ring and schedules a derived one-shot alarm minutes
// from now (minute-truncated), keeping the original's label, sound,
// volume and notification flag. minutes <= 0 uses the configured
// default. Snoozing while Idle is a no-op.
func (e *Engine) Snooze(minutes int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != Ringing {
		return
	}
	if minutes <= 0 {
		minutes = e.snoozeMinutes
	}
	a := e.active
	e.sounder.Stop()
	// The original would rematch this same minute if left behind.
	if a.OneShot() {
		e.registry.Remove(a.ID)
	}

	snoozed := alarm.Alarm{
		Time:             alarm.SnoozeTime(e.now(), minutes),
		Label:            a.Label,
		Sound:            a.Sound,
		Volume:           a.Volume,
		ShowNotification: a.ShowNotification,
	}
	if _, err := e.registry.Add(snoozed); err != nil {
		e.toast(fmt.Sprintf("Snooze failed: %v", err), "error")
	} else {
		e.toast(fmt.Sprintf("Snoozed until %s", snoozed.Time), "info")
	}
	e.phase = Idle
	e.active = alarm.Alarm{}
	e.record("snoozed", a.ID, a.Label, snoozed.Time)
}

// SetVolume adjusts the ringing alarm's volume live. No-op while Idle.
func (e *Engine) SetVolume(volume int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != Ringing {
		return
	}
	e.active.Volume = volume
	e.sounder.SetVolume(volume)
}

// Status is a snapshot for the status surfaces.
type Status struct {
	Phase    string        `json:"phase"`
	Active   *alarm.Alarm  `json:"active,omitempty"`
	Playback playback.Info `json:"playback"`
	Alarms   int           `json:"alarms"`
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		Phase:    e.phase.String(),
		Playback: e.sounder.Current(),
		Alarms:   e.registry.Len(),
	}
	if e.phase == Ringing {
		a := e.active
		st.Active = &a
	}
	return st
}

// Run drives the engine from the host tick source until ctx ends,
// forwarding playback signals to the toaster and history on the way.
// Ticks and playback events interleave on this one goroutine; each is
// handled to completion before the next.
func (e *Engine) Run(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			e.Stop()
			return
		case t := <-ticks:
			e.Tick(t)
		case ev := <-e.sounder.Events():
			e.toast(ev.Message, ev.Severity)
			e.record("playback", "", "", ev.Message)
		}
	}
}

func (e *Engine) toast(message, severity string) {
	if e.toaster != nil {
		e.toaster.Toast(message, severity)
	}
}

func (e *Engine) record(kind, alarmID, label, detail string) {
	if e.history != nil {
		e.history.Record(kind, alarmID, label, detail)
	}
}
