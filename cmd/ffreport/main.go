// Command ffreport writes standings, plot data and projection bias CSVs from
// the SQLite store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/omarshaarawi/ffstats/internal/config"
	"github.com/omarshaarawi/ffstats/internal/repository/memory"
	"github.com/omarshaarawi/ffstats/internal/repository/sqlite"
	"github.com/omarshaarawi/ffstats/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error writing report", "error", err)
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

	weeks := flag.String("weeks", "", "weeks to report on, e.g. 1-13 (default $WEEKS)")
	out := flag.String("out", cfg.Analysis.OutputDir, "output directory")
	samples := flag.Int("samples", cfg.Analysis.Samples, "bootstrap resamples")
	dbPath := flag.String("db", cfg.Store.DBPath, "SQLite database path")
	show := flag.String("print", "", "also print a report: projected, actual, best or bias")
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

	svc := service.NewAnalysisService(nil, store, memory.NewRepository(), service.Options{
		Weeks:   cfg.Analysis.Weeks,
		Samples: *samples,
		Alpha:   cfg.Analysis.Alpha,
		Workers: cfg.Analysis.Workers,
		Seed:    cfg.Analysis.Seed,
	})

	ctx := context.Background()
	written, err := svc.Export(ctx, *out)
	if err != nil {
		return err
	}
	slog.Info("Report written", "dir", *out, "files", len(written))

	var report string
	switch *show {
	case "":
		return nil
	case "bias":
		report, err = svc.ProjectionBias(ctx, "")
	default:
		report, err = svc.Standings(ctx, *show)
	}
	if err != nil {
		return err
	}
	fmt.Println(report)
	return nil
}
