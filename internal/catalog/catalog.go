// internal/catalog/catalog.go
//
// Static puzzle content for the game: days, their levels, and the
// narrative fragment each day reveals on completion.
//
// Initialization behavior (Load):
//   1. If CATALOG_FILE is set, read the catalog from that path.
//   2. Otherwise fall back to the embedded assets/game.json.
//
// Constraints:
//   • Day numbers must be unique and contiguous from 1.
//   • Level keys are "1".."N" and each holds exactly one puzzle record.
//   • Answers are unique within a day (solved answers are tracked as a set).
//   • The catalog is read-only once loaded.

package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/robalobadob/emode/assets"
)

// ErrUnknownDay is returned for day or level numbers that are not in the catalog.
var ErrUnknownDay = errors.New("catalog: unknown day or level")

// Level is one cipher puzzle within a day.
type Level struct {
	Type        string `json:"type"`
	Cipher      string `json:"cipher"`
	Instruction string `json:"instruction"`
	Clue        string `json:"clue"`
	Answer      string `json:"answer"`
}

// Day is one thematic unit of the game.
type Day struct {
	Day         int                `json:"day"`
	Title       string             `json:"title"`
	Lore        string             `json:"lore"`
	Instruction string             `json:"instruction"`
	Message     string             `json:"message"`
	Levels      map[string][]Level `json:"levels"`
}

// LevelCount is the number of levels the day holds.
func (d Day) LevelCount() int { return len(d.Levels) }

// Level returns the puzzle for level n (1-based).
func (d Day) Level(n int) (Level, bool) {
	ls, ok := d.Levels[strconv.Itoa(n)]
	if !ok || len(ls) == 0 {
		return Level{}, false
	}
	return ls[0], true
}

// Catalog is the ordered, immutable list of days.
type Catalog struct {
	days []Day
}

// Load reads the catalog from CATALOG_FILE, or the embedded default when unset.
func Load(path string) (*Catalog, error) {
	var (
		raw []byte
		err error
	)
	if path != "" {
		raw, err = os.ReadFile(path)
	} else {
		raw, err = assets.Catalog()
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var days []Day
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(days)
}

// New validates days and returns them as a Catalog ordered by day number.
func New(days []Day) (*Catalog, error) {
	if len(days) == 0 {
		return nil, errors.New("catalog: no days")
	}
	sorted := append([]Day(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Day < sorted[j].Day })
	for i, d := range sorted {
		if d.Day != i+1 {
			return nil, fmt.Errorf("catalog: expected day %d, got %d", i+1, d.Day)
		}
		seen := make(map[string]bool, d.LevelCount())
		for n := 1; n <= d.LevelCount(); n++ {
			l, ok := d.Level(n)
			if !ok {
				return nil, fmt.Errorf("catalog: day %d is missing level %d", d.Day, n)
			}
			key := normalizeAnswer(l.Answer)
			if seen[key] {
				return nil, fmt.Errorf("catalog: day %d repeats answer %q", d.Day, l.Answer)
			}
			seen[key] = true
		}
	}
	return &Catalog{days: sorted}, nil
}

// Days returns the days in order.
func (c *Catalog) Days() []Day {
	return append([]Day(nil), c.days...)
}

// Len is the number of days.
func (c *Catalog) Len() int { return len(c.days) }

// Day looks up a day by number.
func (c *Catalog) Day(n int) (Day, error) {
	if n < 1 || n > len(c.days) {
		return Day{}, fmt.Errorf("%w: day %d", ErrUnknownDay, n)
	}
	return c.days[n-1], nil
}

// Level looks up a single puzzle.
func (c *Catalog) Level(day, level int) (Level, error) {
	d, err := c.Day(day)
	if err != nil {
		return Level{}, err
	}
	l, ok := d.Level(level)
	if !ok {
		return Level{}, fmt.Errorf("%w: day %d level %d", ErrUnknownDay, day, level)
	}
	return l, nil
}

// LevelCounts maps each day number to its level count.
func (c *Catalog) LevelCounts() map[int]int {
	out := make(map[int]int, len(c.days))
	for _, d := range c.days {
		out[d.Day] = d.LevelCount()
	}
	return out
}

// Messages maps each day number to its narrative fragment.
func (c *Catalog) Messages() map[int]string {
	out := make(map[int]string, len(c.days))
	for _, d := range c.days {
		if d.Message != "" {
			out[d.Day] = d.Message
		}
	}
	return out
}

// IsAnswerCorrect compares answers case-insensitively, ignoring surrounding whitespace.
func IsAnswerCorrect(given, want string) bool {
	return normalizeAnswer(given) == normalizeAnswer(want)
}

func normalizeAnswer(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
