package alarm

import "time"

// Match returns the first alarm (insertion order) due at now, comparing
// on minute resolution: a tick that arrives late but within the same
// minute still matches, and a suspended-then-resumed clock cannot
// double-fire within one minute because the caller goes non-Idle on the
// first hit.
//
// The caller must only invoke Match while no alarm is active; that is
// what makes a same-minute second alarm a silent lost wakeup rather
// than a concurrent ring.
func Match(now time.Time, alarms []Alarm) (Alarm, bool) {
	nowHM := TimeOfDay(now)
	for _, a := range alarms {
		if matchesAt(a, nowHM, now) {
			return a, true
		}
	}
	return Alarm{}, false
}

func matchesAt(a Alarm, nowHM string, now time.Time) bool {
	if a.Time != nowHM {
		return false
	}
	if a.ReminderDate == "" {
		return true
	}
	d, err := time.Parse(DateLayout, a.ReminderDate)
	if err != nil {
		// Validate rejects these on the way in; an invalid stored
		// date never fires.
		return false
	}
	return d.Year() == now.Year() && d.Month() == now.Month() && d.Day() == now.Day()
}
