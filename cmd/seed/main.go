// Command seed loads the bundled Ironsworn reference tables into a database.
// The server seeds an empty database on boot; this tool exists to re-seed
// after editing the catalog data.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/talgya/forgesworn/internal/catalog"
	"github.com/talgya/forgesworn/internal/storage"
)

func main() {
	dbPath := flag.String("db", "data/forgesworn.db", "path to the SQLite database")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	os.MkdirAll(filepath.Dir(*dbPath), 0755)
	db, err := storage.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	oracles, err := catalog.Oracles()
	if err != nil {
		slog.Error("failed to load oracle catalog", "error", err)
		os.Exit(1)
	}
	moves, err := catalog.Moves()
	if err != nil {
		slog.Error("failed to load move catalog", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := db.UpsertOracles(ctx, oracles); err != nil {
		slog.Error("failed to upsert oracles", "error", err)
		os.Exit(1)
	}
	if err := db.UpsertMoves(ctx, moves); err != nil {
		slog.Error("failed to upsert moves", "error", err)
		os.Exit(1)
	}

	slog.Info("seed complete", "oracles", len(oracles), "moves", len(moves), "db", *dbPath)
}
