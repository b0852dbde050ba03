package alarm

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is an ordered collection of alarms. Iteration order is
// insertion order, which is also the matcher's tie-break order. All
// methods are safe for concurrent use; mutation from the dashboard and
// reads from the engine loop land on the same lock.
type Registry struct {
	mu     sync.Mutex
	alarms []Alarm
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add validates and inserts an alarm, assigning an id if absent, and
// returns the id.
func (r *Registry) Add(a Alarm) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alarms = append(r.alarms, a)
	return a.ID, nil
}

// Remove deletes the alarm with the given id. Removing an absent id is
// a no-op, not an error.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.alarms {
		if a.ID == id {
			r.alarms = append(r.alarms[:i], r.alarms[i+1:]...)
			return
		}
	}
}

// Patch holds optional field overrides for Update. Nil fields are left
// unchanged.
type Patch struct {
	Time             *string `json:"time,omitempty"`
	Label            *string `json:"label,omitempty"`
	Recurring        *bool   `json:"recurring,omitempty"`
	ReminderDate     *string `json:"reminder_date,omitempty"`
	Sound            *string `json:"sound,omitempty"`
	Volume           *int    `json:"volume,omitempty"`
	ShowNotification *bool   `json:"show_notification,omitempty"`
}

// Update applies a partial mutation to the alarm with the given id.
// An absent id is silently ignored; an invalid patched time leaves the
// alarm unchanged and returns the validation error.
func (r *Registry) Update(id string, p Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.alarms {
		if r.alarms[i].ID != id {
			continue
		}
		patched := r.alarms[i]
		if p.Time != nil {
			patched.Time = *p.Time
		}
		if p.Label != nil {
			patched.Label = *p.Label
		}
		if p.Recurring != nil {
			patched.Recurring = *p.Recurring
		}
		if p.ReminderDate != nil {
			patched.ReminderDate = *p.ReminderDate
		}
		if p.Sound != nil {
			patched.Sound = *p.Sound
		}
		if p.Volume != nil {
			patched.Volume = *p.Volume
		}
		if p.ShowNotification != nil {
			patched.ShowNotification = *p.ShowNotification
		}
		if err := patched.Validate(); err != nil {
			return err
		}
		r.alarms[i] = patched
		return nil
	}
	return nil
}

// Get returns the alarm with the given id.
func (r *Registry) Get(id string) (Alarm, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alarms {
		if a.ID == id {
			return a, true
		}
	}
	return Alarm{}, false
}

// List returns a copy of the alarms in insertion order.
func (r *Registry) List() []Alarm {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Alarm, len(r.alarms))
	copy(out, r.alarms)
	return out
}

// Len returns the number of registered alarms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alarms)
}
