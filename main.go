package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/patternmind/assets"
	"github.com/robalobadob/patternmind/internal/catalog"
	"github.com/robalobadob/patternmind/internal/config"
	"github.com/robalobadob/patternmind/internal/database"
	"github.com/robalobadob/patternmind/internal/httpserver"
	"github.com/robalobadob/patternmind/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	cat := catalog.New(catalog.Options{
		MaxNodes:  cfg.MaxNodes,
		MaxLength: cfg.MaxLength,
		Workers:   cfg.GenWorkers,
	})
	// The default board backs the daily challenge; build it before accepting traffic.
	start := time.Now()
	cands, err := cat.Candidates(context.Background(), cfg.GridWidth, cfg.GridHeight, cfg.PatternLength)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to generate default patterns")
	}
	log.Info().
		Int("width", cfg.GridWidth).
		Int("height", cfg.GridHeight).
		Int("length", cfg.PatternLength).
		Int("patterns", len(cands)).
		Dur("took", time.Since(start)).
		Msg("default board ready")

	srv := httpserver.New(*cfg, store.NewMemoryStore(), cat, db)
	log.Info().Str("port", cfg.Port).Msg("starting patternmind")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
