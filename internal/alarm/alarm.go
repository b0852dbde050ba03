package alarm

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultVolume is the playback volume (0-100) for alarms that don't set one.
const DefaultVolume = 50

// DefaultSound is the built-in tone used when an alarm doesn't name one.
const DefaultSound = "classic"

// TimeLayout is the wall-clock time-of-day format alarms are keyed on.
// Matching is minute-resolution by construction: seconds never appear.
const TimeLayout = "15:04"

// DateLayout is the calendar date format for date-scoped alarms.
const DateLayout = "2006-01-02"

// Alarm is a scheduled wake event. Time is a local wall-clock "HH:MM"
// with no timezone; ReminderDate, when set, scopes the alarm to a single
// calendar day and makes it one-shot regardless of Recurring.
type Alarm struct {
	ID               string `json:"id,omitempty"`
	Time             string `json:"time"`
	Label            string `json:"label,omitempty"`
	Recurring        bool   `json:"recurring,omitempty"`
	ReminderDate     string `json:"reminder_date,omitempty"`
	Sound            string `json:"sound,omitempty"`
	Volume           int    `json:"volume,omitempty"`
	ShowNotification bool   `json:"show_notification,omitempty"`
}

// UnmarshalJSON sets defaults then decodes the JSON structure.
// Go's json.Unmarshal merges into existing struct fields, so only
// values present in JSON override the defaults.
func (a *Alarm) UnmarshalJSON(data []byte) error {
	a.Volume = DefaultVolume
	a.Sound = DefaultSound
	type Alias Alarm
	return json.Unmarshal(data, (*Alias)(a))
}

// Validate checks the time and optional date formats and clamps volume.
func (a *Alarm) Validate() error {
	if _, err := time.Parse(TimeLayout, a.Time); err != nil {
		return fmt.Errorf("alarm time %q: want HH:MM (24h): %w", a.Time, err)
	}
	if a.ReminderDate != "" {
		if _, err := time.Parse(DateLayout, a.ReminderDate); err != nil {
			return fmt.Errorf("reminder date %q: want YYYY-MM-DD: %w", a.ReminderDate, err)
		}
	}
	if a.Volume < 0 {
		a.Volume = 0
	}
	if a.Volume > 100 {
		a.Volume = 100
	}
	if a.Sound == "" {
		a.Sound = DefaultSound
	}
	return nil
}

// OneShot reports whether the alarm should be removed after a completed
// ring. Date-scoped alarms are one-shot even when marked recurring: their
// date can never match again.
func (a *Alarm) OneShot() bool {
	return a.ReminderDate != "" || !a.Recurring
}

// TimeOfDay formats t as the "HH:MM" key alarms match against.
func TimeOfDay(t time.Time) string {
	return t.Format(TimeLayout)
}

// SnoozeTime returns the minute-truncated "HH:MM" that lies minutes
// after now, wrapping across midnight.
func SnoozeTime(now time.Time, minutes int) string {
	return TimeOfDay(now.Add(time.Duration(minutes) * time.Minute))
}
