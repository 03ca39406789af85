// internal/httpserver/routes_share.go
//
// Sharing and rankings:
//   - GET  /share?scope=day|overall&day=N → share title + text
//   - POST /share                         → render and deliver through the share chain
//   - GET  /share/card.png?scope=&day=    → the share as a PNG card
//   - GET  /leaderboard?day=N             → top 20 for a day, or overall when day is absent
//
// A failed delivery is a 502 carrying the rendered text so the client can
// fall back to copying it.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/emode/internal/leaderboard"
	"github.com/robalobadob/emode/internal/progress"
)

func (s *Server) mountShare(r chi.Router) {
	r.Get("/share", s.handleShareText)
	r.Post("/share", s.handleShare)
	r.Get("/share/card.png", s.handleShareCard)
	r.Get("/leaderboard", s.handleLeaderboard)
}

type shareReq struct {
	Scope progress.Scope `json:"scope"`
	Day   int            `json:"day"`
}

type shareRes struct {
	progress.Share
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// render builds the share for req, writing a 400 on a bad scope or day.
func (s *Server) render(w http.ResponseWriter, r *http.Request, req shareReq) (progress.Share, bool) {
	var d progress.Day
	switch req.Scope {
	case progress.ScopeOverall:
	case progress.ScopeDay:
		var err error
		if d, err = s.Progress.Config().Validate(req.Day); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_day")
			return progress.Share{}, false
		}
	default:
		writeError(w, http.StatusBadRequest, "invalid_scope")
		return progress.Share{}, false
	}
	sh, err := s.Progress.Player(s.owner(w, r)).ShareText(r.Context(), req.Scope, d)
	if err != nil {
		writeGameError(w, err)
		return progress.Share{}, false
	}
	return sh, true
}

// renderQuery builds the share described by ?scope=&day=.
func (s *Server) renderQuery(w http.ResponseWriter, r *http.Request) (progress.Share, bool) {
	q := r.URL.Query()
	req := shareReq{Scope: progress.Scope(q.Get("scope"))}
	if req.Scope == progress.ScopeDay {
		d, err := progress.ParseDay(q.Get("day"), s.Progress.Config().TotalDays)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_day")
			return progress.Share{}, false
		}
		req.Day = int(d)
	}
	return s.render(w, r, req)
}

func (s *Server) handleShareText(w http.ResponseWriter, r *http.Request) {
	sh, ok := s.renderQuery(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(sh)
}

func (s *Server) handleShareCard(w http.ResponseWriter, r *http.Request) {
	if s.Card == nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	sh, ok := s.renderQuery(w, r)
	if !ok {
		return
	}
	png, err := s.Card(sh)
	if err != nil {
		log.Error().Err(err).Str("title", sh.Title).Msg("render share card")
		writeError(w, http.StatusInternalServerError, "render_failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var req shareReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sh, ok := s.render(w, r, req)
	if !ok {
		return
	}
	if s.Share == nil {
		_ = json.NewEncoder(w).Encode(shareRes{Share: sh})
		return
	}
	if err := s.Share.Deliver(r.Context(), sh); err != nil {
		var de *progress.ShareDeliveryError
		if !errors.As(err, &de) {
			de = &progress.ShareDeliveryError{Title: sh.Title, Err: err}
		}
		log.Warn().Err(de).Str("title", sh.Title).Msg("share delivery failed")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(shareRes{Share: sh, Error: "share_failed"})
		return
	}
	_ = json.NewEncoder(w).Encode(shareRes{Share: sh, Delivered: true})
}

type leaderboardRes struct {
	Day  int               `json:"day,omitempty"`
	Rows []leaderboard.Row `json:"rows"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("day")
	if raw == "" {
		rows, err := s.Leaderboard.Overall(r.Context(), leaderboard.DefaultLimit)
		if err != nil {
			log.Error().Err(err).Msg("overall leaderboard")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		_ = json.NewEncoder(w).Encode(leaderboardRes{Rows: rows})
		return
	}
	d, err := progress.ParseDay(raw, s.Progress.Config().TotalDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_day")
		return
	}
	rows, err := s.Leaderboard.Day(r.Context(), int(d), leaderboard.DefaultLimit)
	if err != nil {
		log.Error().Err(err).Int("day", int(d)).Msg("day leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(leaderboardRes{Day: int(d), Rows: rows})
}
