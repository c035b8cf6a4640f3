// Command hearthd runs the Forgesworn Hearth campaign server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/talgya/forgesworn/internal/api"
	"github.com/talgya/forgesworn/internal/campaign"
	"github.com/talgya/forgesworn/internal/catalog"
	"github.com/talgya/forgesworn/internal/config"
	"github.com/talgya/forgesworn/internal/dice"
	"github.com/talgya/forgesworn/internal/entity"
	"github.com/talgya/forgesworn/internal/move"
	"github.com/talgya/forgesworn/internal/namegen"
	"github.com/talgya/forgesworn/internal/narration"
	"github.com/talgya/forgesworn/internal/oracle"
	"github.com/talgya/forgesworn/internal/reveal"
	"github.com/talgya/forgesworn/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	if err := seedIfEmpty(context.Background(), db); err != nil {
		slog.Error("failed to seed reference data", "error", err)
		os.Exit(1)
	}

	// ── Engines ───────────────────────────────────────────────────────
	rng := dice.CryptoSource{}
	oracles := oracle.NewEngine(db, rng)
	moves := move.NewEngine(db, rng)
	campaigns := campaign.NewService(db)
	entities := entity.NewService(db)
	generator := namegen.New(oracles, rng)
	revealer := reveal.New(db, generator, rng)

	llm := narration.NewClient(cfg.LLMURL, cfg.LLMModel)
	if llm.Enabled() {
		slog.Info("narration enabled", "model", cfg.LLMModel)
	} else {
		slog.Warn("LLM_URL/LLM_MODEL not set, narration disabled")
	}

	// ── HTTP ──────────────────────────────────────────────────────────
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	handler := &api.Handler{
		Campaigns: campaigns,
		Oracles:   oracles,
		Moves:     moves,
		Reveal:    revealer,
		Generator: generator,
		Entities:  entities,
		Narration: llm,
	}
	handler.Register(e)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// seedIfEmpty loads the bundled reference tables on first boot so a fresh
// database can serve oracle and move rolls immediately.
func seedIfEmpty(ctx context.Context, db *storage.DB) error {
	n, err := db.CountOracles(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	oracles, err := catalog.Oracles()
	if err != nil {
		return err
	}
	moves, err := catalog.Moves()
	if err != nil {
		return err
	}
	if err := db.UpsertOracles(ctx, oracles); err != nil {
		return err
	}
	if err := db.UpsertMoves(ctx, moves); err != nil {
		return err
	}
	slog.Info("seeded reference data", "oracles", len(oracles), "moves", len(moves))
	return nil
}
