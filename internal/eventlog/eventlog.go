package eventlog

import "time"

// Entry is one recorded ring-lifecycle event.
type Entry struct {
	ID      int64
	Time    time.Time
	Kind    string // "fired" | "stopped" | "snoozed" | "playback"
	AlarmID string
	Label   string
	Detail  string // sound id, snooze target time, or playback message
}

// Store abstracts ring-history storage. Record is best-effort by
// contract: history must never get in the way of ringing, so
// implementations report write failures to stderr instead of returning
// them.
type Store interface {
	Record(kind, alarmID, label, detail string)

	// Entries returns the newest-first events of the last days days;
	// 0 means all.
	Entries(days int) ([]Entry, error)

	// Clean removes entries older than days days and returns the
	// removed count.
	Clean(days int) (int, error)

	// Clear deletes all data.
	Clear() error

	Close() error
	Path() string
}
