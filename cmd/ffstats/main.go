package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/omarshaarawi/ffstats/internal/api/espn"
	"github.com/omarshaarawi/ffstats/internal/api/fantasy"
	"github.com/omarshaarawi/ffstats/internal/bot"
	"github.com/omarshaarawi/ffstats/internal/config"
	"github.com/omarshaarawi/ffstats/internal/repository/memory"
	"github.com/omarshaarawi/ffstats/internal/repository/sqlite"
	"github.com/omarshaarawi/ffstats/internal/scheduler"
	"github.com/omarshaarawi/ffstats/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("ffstats stopped", "error", err)
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
	if err := cfg.RequireBot(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(cfg.Store.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	league := fantasy.NewAPI(espn.NewAPI(espn.NewClient(cfg.ESPN)))
	svc := service.NewAnalysisService(league, store, memory.NewRepository(), service.Options{
		Weeks:   cfg.Analysis.Weeks,
		Samples: cfg.Analysis.Samples,
		Alpha:   cfg.Analysis.Alpha,
		Workers: cfg.Analysis.Workers,
		Seed:    cfg.Analysis.Seed,
	})

	if err := seedStore(ctx, store, svc); err != nil {
		return err
	}

	telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, svc)
	if err != nil {
		return err
	}

	sched, err := scheduler.NewScheduler(cfg.Schedule, svc, telegramBot.SendMessage)
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	health := &http.Server{Addr: cfg.Server.HealthAddr, Handler: healthHandler(store)}
	go func() {
		if err := health.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Health server failed", "addr", health.Addr, "error", err)
		}
	}()

	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			slog.Error("Telegram bot stopped", "error", err)
			stop()
		}
	}()

	slog.Info("ffstats running", "league", cfg.ESPN.LeagueID, "season", cfg.ESPN.Year, "weeks", cfg.Analysis.Weeks)
	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return health.Shutdown(shutdownCtx)
}

// seedStore runs a first scrape when the database holds no league yet, so
// commands have data before the first scheduled refresh.
func seedStore(ctx context.Context, store *sqlite.Store, svc *service.AnalysisService) error {
	teams, err := store.Teams(ctx)
	if err != nil {
		return err
	}
	if len(teams) > 0 {
		slog.Info("Using stored league", "teams", len(teams))
		return nil
	}

	slog.Info("Database empty, scraping league")
	_, err = svc.Refresh(ctx)
	return err
}

func healthHandler(store *sqlite.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			slog.Error("Health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
