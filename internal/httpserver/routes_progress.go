// internal/httpserver/routes_progress.go
//
// Player progress and play routes:
//   - GET    /progress            → the caller's aggregate
//   - DELETE /progress            → full reset
//   - GET    /days                → per-day status view
//   - GET    /days/{day}          → one day's stats, status and score
//   - POST   /days/{day}/begin    → enter a day
//   - POST   /days/{day}/answer   → submit an answer for the current level
//   - POST   /days/{day}/hint     → reveal the current level's clue
//   - POST   /days/{day}/reset    → forget a day
//   - GET    /stats               → totals, stats cards, next unlock date
//
// Day numbers are validated here; bad ones are 400s.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/emode/internal/game"
	"github.com/robalobadob/emode/internal/progress"
)

// mountProgress registers the progress and play routes on r.
func (s *Server) mountProgress(r chi.Router) {
	r.Get("/progress", s.handleGetProgress)
	r.Delete("/progress", s.handleResetAll)
	r.Get("/stats", s.handleStats)

	r.Route("/days", func(r chi.Router) {
		r.Get("/", s.handleDays)
		r.Route("/{day}", func(r chi.Router) {
			r.Get("/", s.handleDay)
			r.Post("/begin", s.handleBegin)
			r.Post("/answer", s.handleAnswer)
			r.Post("/hint", s.handleHint)
			r.Post("/reset", s.handleResetDay)
		})
	})
}

// dayParam parses {day}, writing a 400 when it is not a valid day.
func (s *Server) dayParam(w http.ResponseWriter, r *http.Request) (progress.Day, bool) {
	d, err := progress.ParseDay(chi.URLParam(r, "day"), s.Progress.Config().TotalDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_day")
		return 0, false
	}
	return d, true
}

// writeGameError maps play errors to status codes.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, progress.ErrDayOutOfRange):
		writeError(w, http.StatusBadRequest, "invalid_day")
	case errors.Is(err, game.ErrDayLocked):
		writeError(w, http.StatusForbidden, "day_locked")
	case errors.Is(err, game.ErrDayCompleted):
		writeError(w, http.StatusConflict, "day_completed")
	default:
		log.Error().Err(err).Msg("play action")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	p := s.Progress.Player(s.owner(w, r)).Progress(r.Context())
	_ = json.NewEncoder(w).Encode(p)
}

func (s *Server) handleResetAll(w http.ResponseWriter, r *http.Request) {
	s.Game.ResetAll(r.Context(), s.owner(w, r))
	_ = json.NewEncoder(w).Encode(progress.Empty())
}

func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(s.Progress.Player(s.owner(w, r)).Statuses(r.Context()))
}

type dayRes struct {
	Stats  progress.DayStats  `json:"stats"`
	Status progress.DayStatus `json:"status"`
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dayParam(w, r)
	if !ok {
		return
	}
	tr := s.Progress.Player(s.owner(w, r))
	st, err := tr.GetDayStats(r.Context(), d)
	if err != nil {
		writeGameError(w, err)
		return
	}
	status, err := tr.Status(r.Context(), d)
	if err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(dayRes{Stats: st, Status: status})
}

func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dayParam(w, r)
	if !ok {
		return
	}
	b, err := s.Game.Begin(r.Context(), s.owner(w, r), d)
	if err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(b)
}

type answerReq struct {
	Answer string `json:"answer"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dayParam(w, r)
	if !ok {
		return
	}
	var req answerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	turn, err := s.Game.Submit(r.Context(), s.owner(w, r), d, req.Answer)
	if err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(turn)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dayParam(w, r)
	if !ok {
		return
	}
	h, err := s.Game.Hint(r.Context(), s.owner(w, r), d)
	if err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(h)
}

func (s *Server) handleResetDay(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dayParam(w, r)
	if !ok {
		return
	}
	p, err := s.Game.Reset(r.Context(), s.owner(w, r), d)
	if err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(p)
}

type statsRes struct {
	Stats      progress.GameStats   `json:"stats"`
	Cards      []progress.StatsCard `json:"cards"`
	NextUnlock *time.Time           `json:"nextUnlock,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.Progress.Player(s.owner(w, r)).Stats(r.Context())
	res := statsRes{Stats: st, Cards: progress.StatsCards(st, s.Progress.Config())}
	if next, ok := s.Progress.Policy().Schedule.NextUnlock(s.Progress.Now()); ok {
		res.NextUnlock = &next
	}
	_ = json.NewEncoder(w).Encode(res)
}
