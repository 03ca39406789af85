// internal/progress/configuration.go
//
// GameConfiguration derived from the catalog's level counts.

package progress

// PointsPerLevel is the base value of one solved level.
const PointsPerLevel = 100

// Configuration holds the static facts derived from the puzzle catalog.
type Configuration struct {
	TotalDays           int
	TotalLevels         int
	TotalPossiblePoints int
	PointsPerLevel      int
	LevelsByDay         map[Day]int
	MaxPointsByDay      map[Day]int
}

// NewConfiguration derives a Configuration from per-day level counts.
func NewConfiguration(levelCounts map[int]int) Configuration {
	cfg := Configuration{
		TotalDays:      len(levelCounts),
		PointsPerLevel: PointsPerLevel,
		LevelsByDay:    make(map[Day]int, len(levelCounts)),
		MaxPointsByDay: make(map[Day]int, len(levelCounts)),
	}
	for d, n := range levelCounts {
		cfg.LevelsByDay[Day(d)] = n
		cfg.MaxPointsByDay[Day(d)] = n * PointsPerLevel
		cfg.TotalLevels += n
	}
	cfg.TotalPossiblePoints = cfg.TotalLevels * PointsPerLevel
	return cfg
}

// LevelsForDay returns the level count for d, or 0 if d is unknown.
func (c Configuration) LevelsForDay(d Day) int { return c.LevelsByDay[d] }

// MaxPointsForDay returns the maximum score for d, or 0 if d is unknown.
func (c Configuration) MaxPointsForDay(d Day) int { return c.MaxPointsByDay[d] }

// Validate checks that n is a known day.
func (c Configuration) Validate(n int) (Day, error) { return ValidateDay(n, c.TotalDays) }

// Days lists 1..TotalDays.
func (c Configuration) Days() []Day {
	out := make([]Day, c.TotalDays)
	for i := range out {
		out[i] = Day(i + 1)
	}
	return out
}
