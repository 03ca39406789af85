// internal/game/types.go
//
// Play session payloads.
// Defines:
//   - Outcome: evaluation of one submitted answer.
//   - Briefing: what a player sees when entering a day.
//   - Turn: counters and the next puzzle after a submission.
//   - Hint: a revealed clue.

package game

import "github.com/robalobadob/emode/internal/progress"

// Outcome is the evaluation of one submitted answer.
type Outcome string

const (
	OutcomeCorrect     Outcome = "correct"
	OutcomeIncorrect   Outcome = "incorrect"
	OutcomeDayComplete Outcome = "day_complete"
)

// Puzzle is the player-facing part of a level. The answer and clue stay server side.
type Puzzle struct {
	Level       int    `json:"level"`
	Type        string `json:"type"`
	Cipher      string `json:"cipher"`
	Instruction string `json:"instruction"`
}

// Briefing describes a day on entry.
type Briefing struct {
	Day         progress.Day      `json:"day"`
	Title       string            `json:"title"`
	Lore        string            `json:"lore"`
	Instruction string            `json:"instruction"`
	TotalLevels int               `json:"totalLevels"`
	Puzzle      Puzzle            `json:"puzzle"`  // current level, decoded+1 capped at TotalLevels
	Resumed     bool              `json:"resumed"` // day was already started
	Completed   bool              `json:"completed"`
	Stats       progress.DayStats `json:"stats"`
}

// Turn reports the state after a submission.
type Turn struct {
	Outcome     Outcome `json:"outcome"`
	Tries       int     `json:"tries"`
	HintsUsed   int     `json:"hintsUsed"`
	Decoded     int     `json:"decoded"`
	TotalLevels int     `json:"totalLevels"`
	Score       int     `json:"score"`            // final once complete, partial before
	Next        *Puzzle `json:"next,omitempty"`   // nil once the day is complete
	Message     string  `json:"message,omitempty"` // day fragment, set on completion
}

// Hint is a revealed clue for the current level.
type Hint struct {
	Level     int    `json:"level"`
	Clue      string `json:"clue"`
	HintsUsed int    `json:"hintsUsed"`
}
