// internal/httpserver/server.go
//
// HTTP server wiring for the EMODE backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/catalog".
//   - Player endpoints (optional auth): progress, days, play actions, stats,
//     share, leaderboard.
//   - Auth endpoints: /auth/*.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every player endpoint resolves an owner: the signed-in account, or an
//     anonymous cookie that is issued on first contact.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/robalobadob/emode/internal/catalog"
	"github.com/robalobadob/emode/internal/config"
	"github.com/robalobadob/emode/internal/game"
	"github.com/robalobadob/emode/internal/leaderboard"
	"github.com/robalobadob/emode/internal/progress"
)

// Deps are the collaborators the server routes to.
type Deps struct {
	DB          *sql.DB
	Catalog     *catalog.Catalog
	Progress    *progress.Engine
	Game        *game.Engine
	Leaderboard *leaderboard.Store
	Share       progress.Deliverer                   // nil disables POST /share delivery
	Card        func(progress.Share) ([]byte, error) // nil disables GET /share/card.png
}

// Server bundles the router and its dependencies.
type Server struct {
	r   *chi.Mux
	cfg *config.Config
	Deps
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg, Deps: deps}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors(cfg.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"emode","endpoints":["/health","/catalog","/progress","/days","/stats","/share","/share/card.png","/leaderboard","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/catalog", s.handleCatalog)

	// Player endpoints: OPTIONAL AUTH (guests play under an anonymous cookie)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountProgress(r)
		s.mountShare(r)
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------ catalog ------------------------------------

type catalogDay struct {
	Day       int    `json:"day"`
	Title     string `json:"title"`
	Levels    int    `json:"levels"`
	MaxPoints int    `json:"maxPoints"`
}

// handleCatalog lists the days without any puzzle content.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cfg := s.Progress.Config()
	out := make([]catalogDay, 0, s.Catalog.Len())
	for _, d := range s.Catalog.Days() {
		out = append(out, catalogDay{
			Day:       d.Day,
			Title:     d.Title,
			Levels:    d.LevelCount(),
			MaxPoints: cfg.MaxPointsForDay(progress.Day(d.Day)),
		})
	}
	_ = json.NewEncoder(w).Encode(out)
}

// writeError writes a JSON error body with status.
func writeError(w http.ResponseWriter, status int, code string) {
	http.Error(w, `{"error":"`+code+`"}`, status)
}
