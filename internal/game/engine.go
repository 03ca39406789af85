// internal/game/engine.go
//
// Play session engine for one player's day.
// Responsibilities:
//   - Gate every action on the unlock policy (locked days are refused).
//   - Serve the current level: decoded count + 1, capped at the day's level count.
//   - Evaluate answers (trimmed, case-insensitive) and drive the tracker:
//     tries on every submission, decoded answers on a match, completion
//     when the last level is solved.
//   - Reveal clues and count hints.
//   - Report finished days to the leaderboard recorder.
//
// Notes:
//   - Answers and clues come from the catalog; the tracker never sees them
//     except as decoded answers.
//   - Recorder failures are logged and do not fail the turn.

package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/emode/internal/catalog"
	"github.com/robalobadob/emode/internal/leaderboard"
	"github.com/robalobadob/emode/internal/progress"
)

var (
	ErrDayLocked    = errors.New("game: day is locked")
	ErrDayCompleted = errors.New("game: day already completed")
)

// Recorder receives finished days. *leaderboard.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, r leaderboard.Result) error
	Delete(ctx context.Context, ownerID string, day int) error
	DeleteAll(ctx context.Context, ownerID string) error
}

type Engine struct {
	catalog  *catalog.Catalog
	progress *progress.Engine
	recorder Recorder
}

// New builds an Engine. recorder may be nil.
func New(cat *catalog.Catalog, pe *progress.Engine, recorder Recorder) *Engine {
	return &Engine{catalog: cat, progress: pe, recorder: recorder}
}

// session bundles what every action needs: the tracker, the catalog day
// and the player's current stats for it.
type session struct {
	owner string
	tr    *progress.Tracker
	day   catalog.Day
	stats progress.DayStats
}

func (s session) currentLevel() int {
	return min(s.stats.Decoded()+1, s.day.LevelCount())
}

func (s session) puzzle(n int) Puzzle {
	l, _ := s.day.Level(n)
	return Puzzle{Level: n, Type: l.Type, Cipher: l.Cipher, Instruction: l.Instruction}
}

// open validates d, applies the unlock policy and loads the day.
func (e *Engine) open(ctx context.Context, owner string, d progress.Day) (session, error) {
	tr := e.progress.Player(owner)
	ok, err := tr.CanAccess(ctx, d)
	if err != nil {
		return session{}, err
	}
	if !ok {
		return session{}, fmt.Errorf("%w: day %d", ErrDayLocked, d)
	}
	day, err := e.catalog.Day(int(d))
	if err != nil {
		return session{}, err
	}
	stats, err := tr.GetDayStats(ctx, d)
	if err != nil {
		return session{}, err
	}
	return session{owner: owner, tr: tr, day: day, stats: stats}, nil
}

// Begin enters day d, marking it started, and returns the briefing.
func (e *Engine) Begin(ctx context.Context, owner string, d progress.Day) (Briefing, error) {
	s, err := e.open(ctx, owner, d)
	if err != nil {
		return Briefing{}, err
	}
	resumed := s.stats.Started || s.stats.Completed
	if !resumed {
		p, err := s.tr.MarkStarted(ctx, d)
		if err != nil {
			return Briefing{}, err
		}
		s.stats = p.Stats(d)
	}
	return Briefing{
		Day:         d,
		Title:       s.day.Title,
		Lore:        s.day.Lore,
		Instruction: s.day.Instruction,
		TotalLevels: s.day.LevelCount(),
		Puzzle:      s.puzzle(s.currentLevel()),
		Resumed:     resumed,
		Completed:   s.stats.Completed,
		Stats:       s.stats,
	}, nil
}

// Submit evaluates answer against the current level of day d.
func (e *Engine) Submit(ctx context.Context, owner string, d progress.Day, answer string) (Turn, error) {
	s, err := e.open(ctx, owner, d)
	if err != nil {
		return Turn{}, err
	}
	if s.stats.Completed {
		return Turn{}, fmt.Errorf("%w: day %d", ErrDayCompleted, d)
	}
	level, _ := s.day.Level(s.currentLevel())

	p, err := s.tr.IncrementTries(ctx, d)
	if err != nil {
		return Turn{}, err
	}
	outcome := OutcomeIncorrect
	if catalog.IsAnswerCorrect(answer, level.Answer) {
		outcome = OutcomeCorrect
		if p, err = s.tr.AddDecodedMessage(ctx, d, level.Answer); err != nil {
			return Turn{}, err
		}
	}
	s.stats = p.Stats(d)

	if outcome == OutcomeCorrect && s.stats.Decoded() >= s.day.LevelCount() {
		return e.complete(ctx, s, d)
	}

	next := s.puzzle(s.currentLevel())
	return Turn{
		Outcome:     outcome,
		Tries:       s.stats.Tries,
		HintsUsed:   s.stats.HintsUsed,
		Decoded:     s.stats.Decoded(),
		TotalLevels: s.day.LevelCount(),
		Score:       progress.PartialScore(s.stats),
		Next:        &next,
	}, nil
}

// complete closes day d with the counters as stored when the day is
// written, not the session snapshot, and records the result.
func (e *Engine) complete(ctx context.Context, s session, d progress.Day) (Turn, error) {
	now := e.progress.Now()
	p, err := s.tr.FinishDay(ctx, d, now)
	if err != nil {
		return Turn{}, err
	}
	st := p.Stats(d)
	score := e.progress.Config().DayScore(st)
	if st.CompletedAt != nil {
		now = *st.CompletedAt
	}

	if e.recorder != nil {
		r := leaderboard.Result{
			OwnerID:     s.owner,
			Day:         int(d),
			Score:       score,
			Tries:       st.Tries,
			Hints:       st.HintsUsed,
			CompletedAt: now,
		}
		if err := e.recorder.Record(ctx, r); err != nil {
			log.Warn().Err(err).Str("owner", s.owner).Int("day", int(d)).Msg("record day result")
		}
	}

	log.Info().Str("owner", s.owner).Int("day", int(d)).Int("score", score).Msg("day completed")
	return Turn{
		Outcome:     OutcomeDayComplete,
		Tries:       st.Tries,
		HintsUsed:   st.HintsUsed,
		Decoded:     st.Decoded(),
		TotalLevels: s.day.LevelCount(),
		Score:       score,
		Message:     e.progress.Messages().Fragment(d),
	}, nil
}

// Hint reveals the clue for the current level of day d and counts it.
func (e *Engine) Hint(ctx context.Context, owner string, d progress.Day) (Hint, error) {
	s, err := e.open(ctx, owner, d)
	if err != nil {
		return Hint{}, err
	}
	if s.stats.Completed {
		return Hint{}, fmt.Errorf("%w: day %d", ErrDayCompleted, d)
	}
	n := s.currentLevel()
	level, _ := s.day.Level(n)

	p, err := s.tr.RecordHint(ctx, d)
	if err != nil {
		return Hint{}, err
	}
	return Hint{Level: n, Clue: level.Clue, HintsUsed: p.Stats(d).HintsUsed}, nil
}

// Reset forgets day d for owner, including its leaderboard entry.
func (e *Engine) Reset(ctx context.Context, owner string, d progress.Day) (progress.GameProgress, error) {
	p, err := e.progress.Player(owner).ResetDay(ctx, d)
	if err != nil {
		return progress.GameProgress{}, err
	}
	if e.recorder != nil {
		if err := e.recorder.Delete(ctx, owner, int(d)); err != nil {
			log.Warn().Err(err).Str("owner", owner).Int("day", int(d)).Msg("delete day result")
		}
	}
	return p, nil
}

// ResetAll forgets every day for owner.
func (e *Engine) ResetAll(ctx context.Context, owner string) {
	e.progress.Player(owner).ResetAll(ctx)
	if e.recorder != nil {
		if err := e.recorder.DeleteAll(ctx, owner); err != nil {
			log.Warn().Err(err).Str("owner", owner).Msg("delete day results")
		}
	}
}
