// internal/progress/score.go
//
// ScoreCalculator: final and partial day scores, aggregate GameStats and
// the stats-page cards.
//
// Both score modes share one rule: one free try per solved level, 10 points
// per extra try, 25 per hint, never below half the base value.

package progress

import "math"

const (
	tryPenalty  = 10
	hintPenalty = 25
	// floorPerLevel is the minimum a solved level is worth after penalties.
	floorPerLevel = 50
)

// levelScore scores `solved` levels against the given counters. One try per
// solved level is free; every extra try and every hint costs points, but
// the result never drops below floorPerLevel per solved level.
func levelScore(solved, tries, hints int) int {
	if solved <= 0 {
		return 0
	}
	penalty := max(0, (tries-solved)*tryPenalty) + hints*hintPenalty
	return max(solved*floorPerLevel, solved*PointsPerLevel-penalty)
}

// FinalScore scores a completed day with `levels` levels.
func FinalScore(s DayStats, levels int) int {
	return levelScore(levels, s.Tries, s.HintsUsed)
}

// PartialScore scores an unfinished day by the levels decoded so far.
func PartialScore(s DayStats) int {
	return levelScore(s.Decoded(), s.Tries, s.HintsUsed)
}

// DayScore is the final score of a completed day, the partial score of a
// started day, and 0 otherwise.
func (c Configuration) DayScore(s DayStats) int {
	switch {
	case s.Completed:
		return FinalScore(s, c.LevelsForDay(s.Day))
	case s.Started:
		return PartialScore(s)
	default:
		return 0
	}
}

// GameStats aggregates progress across all days.
type GameStats struct {
	CompletedDays       int     `json:"completedDays"`
	TotalScore          int     `json:"totalScore"`
	TotalTries          int     `json:"totalTries"`
	TotalHints          int     `json:"totalHints"`
	TotalLevels         int     `json:"totalLevels"`
	MaxPossibleLevels   int     `json:"maxPossibleLevels"`
	MaxPossibleScore    int     `json:"maxPossibleScore"`
	OverallProgress     float64 `json:"overallProgress"`
	TotalDecodedMessage string  `json:"totalDecodedMessage"`
}

// CalculateGameStats sums scores and counters over every configured day.
// TotalLevels counts solved levels: the full level count of completed days
// plus the decoded count of started days.
func CalculateGameStats(p GameProgress, c Configuration) GameStats {
	st := GameStats{
		CompletedDays:       len(p.CompletedDays),
		MaxPossibleLevels:   c.TotalLevels,
		MaxPossibleScore:    c.TotalPossiblePoints,
		TotalDecodedMessage: p.TotalDecodedMessage,
	}
	for _, d := range c.Days() {
		s := p.Stats(d)
		switch {
		case s.Completed:
			st.TotalScore += FinalScore(s, c.LevelsForDay(d))
			st.TotalLevels += c.LevelsForDay(d)
		case s.Started:
			st.TotalScore += PartialScore(s)
			st.TotalLevels += s.Decoded()
		}
		if s.Started || s.Completed {
			st.TotalTries += s.Tries
			st.TotalHints += s.HintsUsed
		}
	}
	if c.TotalDays > 0 {
		st.OverallProgress = float64(st.CompletedDays) / float64(c.TotalDays) * 100
	}
	return st
}

// StatsCard is one headline figure on the stats page.
type StatsCard struct {
	Icon   string `json:"icon"`
	Value  int    `json:"value"`
	Max    *int   `json:"max"`
	Label  string `json:"label"`
	Suffix string `json:"suffix,omitempty"`
}

// StatsCards renders the four headline cards.
func StatsCards(st GameStats, c Configuration) []StatsCard {
	ptr := func(v int) *int { return &v }
	return []StatsCard{
		{Icon: "Trophy", Value: st.TotalScore, Max: ptr(st.MaxPossibleScore), Label: "Total Points"},
		{Icon: "Calendar", Value: st.CompletedDays, Max: ptr(c.TotalDays), Label: "Days Complete"},
		{Icon: "Target", Value: st.TotalLevels, Max: ptr(st.MaxPossibleLevels), Label: "Levels Solved"},
		{Icon: "Clock", Value: int(math.Round(st.OverallProgress)), Label: "Overall Progress", Suffix: "%"},
	}
}
