package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/omarshaarawi/ffstats/internal/analysis"
	"github.com/omarshaarawi/ffstats/internal/config"
)

type Reports interface {
	Standings(ctx context.Context, policy string) (string, error)
	ProjectionBias(ctx context.Context, position string) (string, error)
	Refresh(ctx context.Context) (string, error)
}

type Scheduler struct {
	s           gocron.Scheduler
	cfg         config.Schedule
	reports     Reports
	sendMessage func(string) error
}

func NewScheduler(cfg config.Schedule, reports Reports, sendMessage func(string) error, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Location)
	if err != nil {
		slog.Error("Failed to load location", "location", cfg.Location, "error", err)
		location = time.UTC
	}

	s, err := gocron.NewScheduler(append([]gocron.SchedulerOption{gocron.WithLocation(location)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:           s,
		cfg:         cfg,
		reports:     reports,
		sendMessage: sendMessage,
	}, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	// Refresh and standings - default Tuesday 7:30, after Monday night football
	_, err := s.s.NewJob(
		gocron.CronJob(s.cfg.Refresh, false),
		gocron.NewTask(s.refreshAndPostStandings, ctx),
		gocron.WithName("refresh"),
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh job: %w", err)
	}

	// Projection bias - default Wednesday 7:30
	_, err = s.s.NewJob(
		gocron.CronJob(s.cfg.Bias, false),
		gocron.NewTask(s.postProjectionBias, ctx),
		gocron.WithName("bias"),
	)
	if err != nil {
		return fmt.Errorf("failed to create projection bias job: %w", err)
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) refreshAndPostStandings(ctx context.Context) {
	if _, err := s.reports.Refresh(ctx); err != nil {
		slog.Error("Failed to refresh league", "error", err)
		return
	}
	for _, policy := range []analysis.Policy{analysis.Actual, analysis.Best} {
		report, err := s.reports.Standings(ctx, policy.Name)
		if err != nil {
			slog.Error("Failed to get standings", "policy", policy.Name, "error", err)
			continue
		}
		if err := s.sendMessage(report); err != nil {
			slog.Error("Failed to post standings", "policy", policy.Name, "error", err)
		}
	}
}

func (s *Scheduler) postProjectionBias(ctx context.Context) {
	report, err := s.reports.ProjectionBias(ctx, "")
	if err != nil {
		slog.Error("Failed to get projection bias", "error", err)
		return
	}
	if err := s.sendMessage(report); err != nil {
		slog.Error("Failed to post projection bias", "error", err)
	}
}
