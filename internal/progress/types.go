// internal/progress/types.go
//
// Persisted progress types.
// Defines:
//   - Day: a validated day number.
//   - DayStats: per-day counters and flags.
//   - GameProgress: the single persisted aggregate.
//
// JSON shape matches the stored document: dayStats is keyed by the
// day number as a string ("1", "2", ...), timestamps are RFC3339.

package progress

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// ErrDayOutOfRange is returned when a day number is outside 1..totalDays.
var ErrDayOutOfRange = errors.New("progress: day out of range")

// Day is a day number, 1-based.
type Day int

func (d Day) String() string { return strconv.Itoa(int(d)) }

// ParseDay parses s as a day number and checks it against totalDays.
func ParseDay(s string, totalDays int) (Day, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrDayOutOfRange, s)
	}
	return ValidateDay(n, totalDays)
}

// ValidateDay converts n to a Day if 1 <= n <= totalDays.
func ValidateDay(n, totalDays int) (Day, error) {
	if n < 1 || n > totalDays {
		return 0, fmt.Errorf("%w: %d not in 1..%d", ErrDayOutOfRange, n, totalDays)
	}
	return Day(n), nil
}

// DayStats holds the counters for one day.
type DayStats struct {
	Day             Day        `json:"day"`
	Started         bool       `json:"started"`
	Completed       bool       `json:"completed"`
	Tries           int        `json:"tries"`
	HintsUsed       int        `json:"hintsUsed"`
	MessagesDecoded []string   `json:"messagesDecoded"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	Score           *int       `json:"score,omitempty"`
}

// NewDayStats returns the zero-valued stats for d.
func NewDayStats(d Day) DayStats {
	return DayStats{Day: d, MessagesDecoded: []string{}}
}

// Decoded is the number of levels solved so far.
func (s DayStats) Decoded() int { return len(s.MessagesDecoded) }

// HasDecoded reports whether msg has already been recorded.
func (s DayStats) HasDecoded(msg string) bool {
	return slices.Contains(s.MessagesDecoded, msg)
}

func (s DayStats) clone() DayStats {
	out := s
	out.MessagesDecoded = append([]string{}, s.MessagesDecoded...)
	if s.StartedAt != nil {
		t := *s.StartedAt
		out.StartedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	if s.Score != nil {
		v := *s.Score
		out.Score = &v
	}
	return out
}

// GameProgress is the persisted aggregate. TotalDecodedMessage is a cache
// derived from CompletedDays; Store recomputes it on every load and save.
type GameProgress struct {
	CompletedDays       []Day            `json:"completedDays"`
	DayStats            map[Day]DayStats `json:"dayStats"`
	TotalDecodedMessage string           `json:"totalDecodedMessage"`
}

// Empty returns the default aggregate.
func Empty() GameProgress {
	return GameProgress{CompletedDays: []Day{}, DayStats: map[Day]DayStats{}}
}

// Stats returns the stored stats for d, or the zero value.
func (p GameProgress) Stats(d Day) DayStats {
	if s, ok := p.DayStats[d]; ok {
		return s.clone()
	}
	return NewDayStats(d)
}

// IsCompleted reports whether d is in CompletedDays.
func (p GameProgress) IsCompleted(d Day) bool {
	_, found := slices.BinarySearch(p.CompletedDays, d)
	return found
}

// Clone returns a deep copy.
func (p GameProgress) Clone() GameProgress {
	out := GameProgress{
		CompletedDays:       append([]Day{}, p.CompletedDays...),
		DayStats:            make(map[Day]DayStats, len(p.DayStats)),
		TotalDecodedMessage: p.TotalDecodedMessage,
	}
	for d, s := range p.DayStats {
		out.DayStats[d] = s.clone()
	}
	return out
}

// normalize restores the structural invariants after decoding or patching:
// non-nil collections, completedDays sorted and unique, and
// day ∈ completedDays ⟺ dayStats[day].completed. Stats for days outside
// 1..totalDays are dropped; totalDays <= 0 only drops days below 1.
func (p *GameProgress) normalize(totalDays int) {
	if p.DayStats == nil {
		p.DayStats = map[Day]DayStats{}
	}
	days := make([]Day, 0, len(p.CompletedDays))
	for d, s := range p.DayStats {
		if d < 1 || (totalDays > 0 && int(d) > totalDays) {
			delete(p.DayStats, d)
			continue
		}
		if s.MessagesDecoded == nil {
			s.MessagesDecoded = []string{}
		}
		s.Day = d
		if s.Completed {
			s.Started = true
			days = append(days, d)
		}
		p.DayStats[d] = s
	}
	slices.Sort(days)
	p.CompletedDays = slices.Compact(days)
}
