// internal/leaderboard/store.go
//
// Cross-player rankings backed by the day_results table.
// Responsibilities:
//   - Record a finished day (insert-or-replace, latest result wins).
//   - Forget a day when its owner resets it.
//   - Rank one day (score DESC, tries ASC, completed_at ASC) or all days
//     by summed score.
//   - Move an anonymous player's rows to an account after sign-in.
//
// Notes:
//   - Owner IDs are account IDs or anonymous cookie IDs. Usernames are
//     joined from the users table; anonymous owners show as "guest".

package leaderboard

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultLimit caps ranking queries when the caller passes a non-positive limit.
const DefaultLimit = 20

// Result is one player's finished day.
type Result struct {
	OwnerID     string    `json:"ownerId"`
	Day         int       `json:"day"`
	Score       int       `json:"score"`
	Tries       int       `json:"tries"`
	Hints       int       `json:"hints"`
	CompletedAt time.Time `json:"completedAt"`
}

// Row is one leaderboard line.
type Row struct {
	Rank        int    `json:"rank"`
	Username    string `json:"username"`
	Score       int    `json:"score"`
	Tries       int    `json:"tries"`
	Hints       int    `json:"hints"`
	DaysPlayed  int    `json:"daysPlayed,omitempty"`
	CompletedAt string `json:"completedAt,omitempty"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record stores r, replacing any earlier result for the same owner and day.
func (s *Store) Record(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO day_results(owner_id, day, score, tries, hints, completed_at)
		 VALUES(?,?,?,?,?,?)`,
		r.OwnerID, r.Day, r.Score, r.Tries, r.Hints, r.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Delete removes owner's result for day.
func (s *Store) Delete(ctx context.Context, ownerID string, day int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM day_results WHERE owner_id=? AND day=?`, ownerID, day)
	return err
}

// DeleteAll removes every result for owner.
func (s *Store) DeleteAll(ctx context.Context, ownerID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM day_results WHERE owner_id=?`, ownerID)
	return err
}

// Day ranks the results for one day.
func (s *Store) Day(ctx context.Context, day, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(u.username, 'guest'), r.score, r.tries, r.hints, r.completed_at
		 FROM day_results r
		 LEFT JOIN users u ON u.id = r.owner_id
		 WHERE r.day=?
		 ORDER BY r.score DESC, r.tries ASC, r.completed_at ASC
		 LIMIT ?`, day, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		r := Row{Rank: len(out) + 1}
		if err := rows.Scan(&r.Username, &r.Score, &r.Tries, &r.Hints, &r.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Overall ranks owners by their summed score across all days.
func (s *Store) Overall(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(u.username, 'guest'), SUM(r.score), SUM(r.tries), SUM(r.hints), COUNT(1)
		 FROM day_results r
		 LEFT JOIN users u ON u.id = r.owner_id
		 GROUP BY r.owner_id
		 ORDER BY SUM(r.score) DESC, SUM(r.tries) ASC, MIN(r.completed_at) ASC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		r := Row{Rank: len(out) + 1}
		if err := rows.Scan(&r.Username, &r.Score, &r.Tries, &r.Hints, &r.DaysPlayed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Claim moves anonID's results to userID. Results the account already has
// for the same day are kept.
func (s *Store) Claim(ctx context.Context, anonID, userID string) {
	if anonID == "" || userID == "" || anonID == userID {
		return
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE OR IGNORE day_results SET owner_id=? WHERE owner_id=?`, userID, anonID); err != nil {
		log.Warn().Err(err).Str("anon", anonID).Msg("claim anon results")
		return
	}
	if err := s.DeleteAll(ctx, anonID); err != nil {
		log.Warn().Err(err).Str("anon", anonID).Msg("drop unclaimed anon results")
	}
}
