// Command ffscrape copies an ESPN league into the SQLite store.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/omarshaarawi/ffstats/internal/api/espn"
	"github.com/omarshaarawi/ffstats/internal/api/fantasy"
	"github.com/omarshaarawi/ffstats/internal/config"
	"github.com/omarshaarawi/ffstats/internal/repository/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error scraping league", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	weeks := flag.String("weeks", "", "weeks to scrape, e.g. 1-13 (default $WEEKS)")
	dbPath := flag.String("db", cfg.Store.DBPath, "SQLite database path")
	flag.Parse()

	if *weeks != "" {
		if cfg.Analysis.Weeks, err = config.ParseWeeks(*weeks); err != nil {
			return err
		}
	}

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := fantasy.NewAPI(espn.NewAPI(espn.NewClient(cfg.ESPN)))
	res, err := api.Sync(ctx, cfg.Analysis.Weeks, store)
	if err != nil {
		return err
	}

	slog.Info("League scraped", "db", *dbPath, "teams", res.Teams, "matchups", res.Matchups, "players", res.Players)
	return nil
}
