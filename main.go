// main.go
//
// Process entry for the EMODE backend.
// Startup order:
//   1. .env (optional) and typed config.
//   2. Logging level.
//   3. SQLite database + migrations (accounts, leaderboard, kv store).
//   4. Puzzle catalog (CATALOG_FILE or the embedded default).
//   5. Progress backend (memory | sqlite | postgres) and engines.
//   6. Share delivery chain (Discord webhook when configured; outside
//      production the share is also echoed to stdout).
//   7. HTTP server.

package main

import (
	"context"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/emode/internal/catalog"
	"github.com/robalobadob/emode/internal/config"
	"github.com/robalobadob/emode/internal/database"
	"github.com/robalobadob/emode/internal/game"
	"github.com/robalobadob/emode/internal/httpserver"
	"github.com/robalobadob/emode/internal/kv"
	"github.com/robalobadob/emode/internal/leaderboard"
	"github.com/robalobadob/emode/internal/progress"
	"github.com/robalobadob/emode/internal/sharecard"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := database.OpenMigrated(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open database")
	}
	defer db.Close()

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}

	var backend progress.Backend
	switch cfg.StorageBackend {
	case config.BackendMemory:
		backend = kv.NewMemory()
	case config.BackendPostgres:
		pg, err := kv.NewPostgres(context.Background(), cfg.PostgresURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pg.Close()
		backend = pg
	default:
		backend = kv.NewSQLite(db)
	}

	msgs := progress.NewMessages(cat.Messages())
	pe := progress.NewEngine(
		progress.NewStore(backend, msgs),
		progress.NewConfiguration(cat.LevelCounts()),
		msgs,
		cfg.LaunchDate,
		progress.WithShareURL(cfg.ShareURL),
	)
	board := leaderboard.NewStore(db)

	share, err := shareChain(cfg, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up sharing")
	}

	srv := httpserver.New(cfg, httpserver.Deps{
		DB:          db,
		Catalog:     cat,
		Progress:    pe,
		Game:        game.New(cat, pe, board),
		Leaderboard: board,
		Share:       share,
		Card:        sharecard.Render,
	})
	log.Info().
		Str("port", cfg.Port).
		Str("backend", cfg.StorageBackend).
		Int("days", cat.Len()).
		Time("launch", cfg.LaunchDate).
		Msg("starting emode server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// shareChain builds the share targets. In production only targets that
// reach the player count, so an empty chain makes every share fail and the
// client falls back to a manual copy. Elsewhere dev receives a copy as a
// last resort.
func shareChain(cfg *config.Config, dev io.Writer) (progress.Chain, error) {
	var chain progress.Chain
	if cfg.DiscordEnabled() {
		dd, err := progress.NewDiscordDeliverer(cfg.DiscordWebhookID, cfg.DiscordWebhookToken)
		if err != nil {
			return nil, err
		}
		dd.Card = sharecard.Render
		chain = append(chain, dd)
	}
	if !cfg.Production() && dev != nil {
		chain = append(chain, progress.WriterDeliverer{W: dev})
	}
	return chain, nil
}
