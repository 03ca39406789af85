// internal/progress/tracker.go
//
// DayStatsTracker and the Engine that hands out per-player trackers.
//
// Every mutation is one Store.Update call: load the aggregate, patch the
// day's stats, recompute the decoded message, persist. Day numbers are
// validated before touching the store; ErrDayOutOfRange is the only error
// a tracker operation returns. Storage failures are logged by Store and
// never surface here.

package progress

import (
	"context"
	"time"
)

// Engine wires the store, static configuration, unlock policy and share
// formatting together.
type Engine struct {
	store     *Store
	cfg       Configuration
	messages  Messages
	policy    Policy
	formatter Formatter
	now       func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithShareURL sets the link used in share messages.
func WithShareURL(url string) Option {
	return func(e *Engine) { e.formatter.URL = url }
}

// NewEngine builds an Engine. launch is the calendar rollout start.
// store is bounded to the configured days: persisted stats for any other
// day are dropped on the next load.
func NewEngine(store *Store, cfg Configuration, messages Messages, launch time.Time, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		cfg:       cfg,
		messages:  messages,
		policy:    Policy{Schedule: Schedule{Launch: launch, TotalDays: cfg.TotalDays}},
		formatter: Formatter{Config: cfg, URL: DefaultShareURL},
		now:       time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	store.bound(cfg.TotalDays)
	return e
}

// Config returns the static game configuration.
func (e *Engine) Config() Configuration { return e.cfg }

// Messages returns the per-day fragment table.
func (e *Engine) Messages() Messages { return e.messages }

// Policy returns the unlock policy.
func (e *Engine) Policy() Policy { return e.policy }

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time { return e.now() }

// Player returns the tracker for owner's aggregate.
func (e *Engine) Player(owner string) *Tracker {
	return &Tracker{e: e, key: KeyFor(owner)}
}

// Tracker reads and mutates one player's progress.
type Tracker struct {
	e   *Engine
	key string
}

// Key is the storage key of the tracked aggregate.
func (t *Tracker) Key() string { return t.key }

func (t *Tracker) validate(d Day) error {
	_, err := t.e.cfg.Validate(int(d))
	return err
}

func (t *Tracker) update(ctx context.Context, d Day, fn func(s *DayStats, p *GameProgress)) (GameProgress, error) {
	if err := t.validate(d); err != nil {
		return GameProgress{}, err
	}
	return t.e.store.Update(ctx, t.key, func(p *GameProgress) {
		s := p.Stats(d)
		fn(&s, p)
		p.DayStats[d] = s
	}), nil
}

// Progress returns the whole aggregate.
func (t *Tracker) Progress(ctx context.Context) GameProgress {
	return t.e.store.Load(ctx, t.key)
}

// Replace overwrites the whole aggregate.
func (t *Tracker) Replace(ctx context.Context, p GameProgress) GameProgress {
	return t.e.store.Save(ctx, t.key, p)
}

// GetDayStats returns stored stats for d, or a zero value that is not persisted.
func (t *Tracker) GetDayStats(ctx context.Context, d Day) (DayStats, error) {
	if err := t.validate(d); err != nil {
		return DayStats{}, err
	}
	return t.Progress(ctx).Stats(d), nil
}

// IsDayStarted reports started || completed.
func (t *Tracker) IsDayStarted(ctx context.Context, d Day) (bool, error) {
	s, err := t.GetDayStats(ctx, d)
	if err != nil {
		return false, err
	}
	return s.Started || s.Completed, nil
}

// MarkStarted flags d as started. It does nothing if d is already started
// or completed.
func (t *Tracker) MarkStarted(ctx context.Context, d Day) (GameProgress, error) {
	if err := t.validate(d); err != nil {
		return GameProgress{}, err
	}
	p := t.Progress(ctx)
	if s := p.Stats(d); s.Started || s.Completed {
		return p, nil
	}
	return t.update(ctx, d, func(s *DayStats, _ *GameProgress) {
		t.start(s)
	})
}

func (t *Tracker) start(s *DayStats) {
	if s.Started || s.Completed {
		return
	}
	now := t.e.now()
	s.Started = true
	s.StartedAt = &now
}

// IncrementTries counts one answer submission.
func (t *Tracker) IncrementTries(ctx context.Context, d Day) (GameProgress, error) {
	return t.update(ctx, d, func(s *DayStats, _ *GameProgress) {
		s.Tries++
	})
}

// RecordHint counts one revealed hint.
func (t *Tracker) RecordHint(ctx context.Context, d Day) (GameProgress, error) {
	return t.update(ctx, d, func(s *DayStats, _ *GameProgress) {
		s.HintsUsed++
	})
}

// AddDecodedMessage records msg as solved for d unless it is already
// recorded or every level is already solved. The day is marked started.
func (t *Tracker) AddDecodedMessage(ctx context.Context, d Day, msg string) (GameProgress, error) {
	levels := t.e.cfg.LevelsForDay(d)
	return t.update(ctx, d, func(s *DayStats, _ *GameProgress) {
		t.start(s)
		if s.HasDecoded(msg) || s.Decoded() >= levels {
			return
		}
		s.MessagesDecoded = append(s.MessagesDecoded, msg)
	})
}

// CompleteDay marks d completed with its final counters and caches the
// final score. completedDays and the decoded message are updated in the
// same write.
func (t *Tracker) CompleteDay(ctx context.Context, d Day, finalTries, finalHints int, completedAt time.Time) (GameProgress, error) {
	return t.update(ctx, d, func(s *DayStats, p *GameProgress) {
		s.Tries = max(0, finalTries)
		s.HintsUsed = max(0, finalHints)
		t.complete(s, p, completedAt)
	})
}

// FinishDay is CompleteDay with the counters as stored at the time of the
// write, so tries and hints recorded by concurrent requests are kept. A day
// that is already completed is returned unchanged.
func (t *Tracker) FinishDay(ctx context.Context, d Day, completedAt time.Time) (GameProgress, error) {
	return t.update(ctx, d, func(s *DayStats, p *GameProgress) {
		if s.Completed {
			return
		}
		t.complete(s, p, completedAt)
	})
}

func (t *Tracker) complete(s *DayStats, p *GameProgress, at time.Time) {
	if !s.Started {
		s.Started = true
		s.StartedAt = &at
	}
	s.Completed = true
	s.CompletedAt = &at
	score := FinalScore(*s, t.e.cfg.LevelsForDay(s.Day))
	s.Score = &score
	p.CompletedDays = append(p.CompletedDays, s.Day)
}

// ResetDay forgets everything about d.
func (t *Tracker) ResetDay(ctx context.Context, d Day) (GameProgress, error) {
	if err := t.validate(d); err != nil {
		return GameProgress{}, err
	}
	return t.e.store.Update(ctx, t.key, func(p *GameProgress) {
		delete(p.DayStats, d)
		kept := p.CompletedDays[:0]
		for _, c := range p.CompletedDays {
			if c != d {
				kept = append(kept, c)
			}
		}
		p.CompletedDays = kept
	}), nil
}

// ResetAll clears the player's aggregate.
func (t *Tracker) ResetAll(ctx context.Context) {
	t.e.store.Clear(ctx, t.key)
}

// RefreshDecodedMessage recomputes and persists the decoded message cache.
func (t *Tracker) RefreshDecodedMessage(ctx context.Context) string {
	return t.e.store.Update(ctx, t.key, func(*GameProgress) {}).TotalDecodedMessage
}

// ---------------------------------------------------------------------------
// derived views

// Stats aggregates the player's scores and counters.
func (t *Tracker) Stats(ctx context.Context) GameStats {
	return CalculateGameStats(t.Progress(ctx), t.e.cfg)
}

// DayScore is the final or partial score for d.
func (t *Tracker) DayScore(ctx context.Context, d Day) (int, error) {
	s, err := t.GetDayStats(ctx, d)
	if err != nil {
		return 0, err
	}
	return t.e.cfg.DayScore(s), nil
}

// CanAccess applies the unlock policy to d at the engine's current time.
func (t *Tracker) CanAccess(ctx context.Context, d Day) (bool, error) {
	if err := t.validate(d); err != nil {
		return false, err
	}
	return t.e.policy.CanAccess(d, t.Progress(ctx).CompletedDays, t.e.now()), nil
}

// DayStatus is one row of the per-day overview.
type DayStatus struct {
	Day          Day    `json:"day"`
	State        State  `json:"state"`
	LevelsSolved int    `json:"levelsSolved"`
	TotalLevels  int    `json:"totalLevels"`
	Score        int    `json:"score"`
	MaxPoints    int    `json:"maxPoints"`
	Message      string `json:"message,omitempty"`
}

// Status returns the overview row for d.
func (t *Tracker) Status(ctx context.Context, d Day) (DayStatus, error) {
	if err := t.validate(d); err != nil {
		return DayStatus{}, err
	}
	return t.status(t.Progress(ctx), d, t.e.now()), nil
}

// Statuses returns the overview of every day.
func (t *Tracker) Statuses(ctx context.Context) []DayStatus {
	p := t.Progress(ctx)
	now := t.e.now()
	out := make([]DayStatus, 0, t.e.cfg.TotalDays)
	for _, d := range t.e.cfg.Days() {
		out = append(out, t.status(p, d, now))
	}
	return out
}

func (t *Tracker) status(p GameProgress, d Day, now time.Time) DayStatus {
	s := p.Stats(d)
	ds := DayStatus{
		Day:          d,
		State:        t.e.policy.Status(d, p, now),
		LevelsSolved: s.Decoded(),
		TotalLevels:  t.e.cfg.LevelsForDay(d),
		Score:        t.e.cfg.DayScore(s),
		MaxPoints:    t.e.cfg.MaxPointsForDay(d),
	}
	if s.Completed {
		ds.LevelsSolved = ds.TotalLevels
		ds.Message = t.e.messages.Fragment(d)
	}
	return ds
}

// ShareText renders the share message for scope. d is only used for ScopeDay.
func (t *Tracker) ShareText(ctx context.Context, scope Scope, d Day) (Share, error) {
	if scope == ScopeDay {
		s, err := t.GetDayStats(ctx, d)
		if err != nil {
			return Share{}, err
		}
		return Share{Title: Title(scope, d), Text: t.e.formatter.Day(s)}, nil
	}
	return Share{Title: Title(ScopeOverall, 0), Text: t.e.formatter.Overall(t.Stats(ctx))}, nil
}
