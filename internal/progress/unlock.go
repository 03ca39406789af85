// internal/progress/unlock.go
//
// UnlockPolicy: decides whether a day is playable.
//
// A day is playable when any of these hold:
//   - it is day 1;
//   - it is already completed;
//   - the previous day is completed;
//   - the calendar rollout has reached it (day 1 on launch day,
//     day 2 the day after, ...).
//
// The rollout count is clamped to 1..TotalDays and never decreases as
// time moves forward.

package progress

import (
	"time"
)

// State is a day's unlock state.
type State string

const (
	StateLocked     State = "locked"
	StateUnlocked   State = "unlocked"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// DefaultLaunchDate is the first day of the rollout.
var DefaultLaunchDate = time.Date(2025, time.July, 21, 0, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

// Schedule is the calendar rollout.
type Schedule struct {
	Launch    time.Time
	TotalDays int
}

// DaysElapsed is floor((now - launch) / 24h). It is negative before launch.
func (s Schedule) DaysElapsed(now time.Time) int {
	d := now.Sub(s.Launch)
	n := int(d / day)
	if d < 0 && d%day != 0 {
		n--
	}
	return n
}

// UnlockedCount is how many days the calendar has released, in 1..TotalDays.
func (s Schedule) UnlockedCount(now time.Time) int {
	n := s.DaysElapsed(now) + 1
	if n > s.TotalDays {
		n = s.TotalDays
	}
	if n < 1 {
		n = 1
	}
	return n
}

// IsUnlocked reports whether the calendar has released d.
func (s Schedule) IsUnlocked(d Day, now time.Time) bool {
	return d >= 1 && int(d) <= s.UnlockedCount(now)
}

// NextUnlock returns when the next day is released, or false once every
// day is out.
func (s Schedule) NextUnlock(now time.Time) (time.Time, bool) {
	n := s.UnlockedCount(now)
	if n >= s.TotalDays {
		return time.Time{}, false
	}
	return s.Launch.AddDate(0, 0, n), true
}

// Policy combines completion adjacency with the calendar rollout.
type Policy struct {
	Schedule Schedule
}

// CanAccess reports whether d is playable.
func (p Policy) CanAccess(d Day, completed []Day, now time.Time) bool {
	if d == 1 {
		return true
	}
	for _, c := range completed {
		if c == d || c == d-1 {
			return true
		}
	}
	return p.Schedule.IsUnlocked(d, now)
}

// Decide returns StateUnlocked or StateLocked.
func (p Policy) Decide(d Day, completed []Day, now time.Time) State {
	if p.CanAccess(d, completed, now) {
		return StateUnlocked
	}
	return StateLocked
}

// Status is the presentation state of d: completed, in progress (at least
// one level decoded), unlocked or locked.
func (p Policy) Status(d Day, gp GameProgress, now time.Time) State {
	s := gp.Stats(d)
	switch {
	case gp.IsCompleted(d):
		return StateCompleted
	case s.Decoded() > 0:
		return StateInProgress
	default:
		return p.Decide(d, gp.CompletedDays, now)
	}
}
