package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/omarshaarawi/ffstats/internal/analysis"
	"github.com/omarshaarawi/ffstats/internal/api/fantasy"
	"github.com/omarshaarawi/ffstats/internal/export"
	"github.com/omarshaarawi/ffstats/internal/models"
	"github.com/omarshaarawi/ffstats/internal/repository/memory"
)

// Store is the league data the service reads and the sync writes.
type Store interface {
	analysis.LeagueData
	fantasy.Writer
	PlayersByWeek(ctx context.Context, week int) ([]models.PlayerScoreRecord, error)
	AllPlayers(ctx context.Context) ([]models.PlayerScoreRecord, error)
}

type Syncer interface {
	Sync(ctx context.Context, weeks []int, w fantasy.Writer) (fantasy.SyncResult, error)
}

type Options struct {
	Weeks   []int
	Samples int
	Alpha   float64
	Workers int
	Seed    uint64
}

// BiasPositions are the positions reported on by Export besides "all".
var BiasPositions = []string{
	models.PositionQB,
	models.PositionRB,
	models.PositionWR,
	models.PositionTE,
	models.PositionDST,
	models.PositionK,
}

type AnalysisService struct {
	syncer Syncer
	store  Store
	cache  *memory.Repository
	opts   Options

	mu     sync.Mutex
	engine *analysis.Engine
	// run identifies the refresh that produced the stored data.
	run string
}

// NewAnalysisService wires a store and standings cache. syncer may be nil when
// the store is only read.
func NewAnalysisService(syncer Syncer, store Store, cache *memory.Repository, opts Options) *AnalysisService {
	return &AnalysisService{
		syncer: syncer,
		store:  store,
		cache:  cache,
		opts:   opts,
		engine: analysis.NewEngine(store),
	}
}

func (s *AnalysisService) Weeks() []int {
	return s.opts.Weeks
}

func (s *AnalysisService) currentEngine() *analysis.Engine {
	engine, _ := s.current()
	return engine
}

func (s *AnalysisService) current() (*analysis.Engine, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine, s.run
}

// Refresh scrapes the configured weeks into the store and drops derived state.
func (s *AnalysisService) Refresh(ctx context.Context) (string, error) {
	if s.syncer == nil {
		return "", errors.New("no league source configured")
	}

	run := uuid.NewString()
	slog.Info("Refreshing league", "run", run, "weeks", analysis.WeekLabel(s.opts.Weeks))

	res, err := s.syncer.Sync(ctx, s.opts.Weeks, s.store)
	if err != nil {
		return "", fmt.Errorf("error syncing league (run %s): %w", run, err)
	}

	s.mu.Lock()
	s.engine = analysis.NewEngine(s.store)
	s.run = run
	s.mu.Unlock()
	s.cache.ClearStandings()

	slog.Info("League refreshed", "run", run, "teams", res.Teams, "matchups", res.Matchups, "players", res.Players)
	return fmt.Sprintf("🔄 *League refreshed*\n\n%d teams, %d matchups, %d player rows (%s)\nRun: `%s`",
		res.Teams, res.Matchups, res.Players, analysis.WeekLabel(s.opts.Weeks), run), nil
}

// standings returns the standings of the selected weeks and the refresh run
// they were built from, empty when the store was never refreshed here.
func (s *AnalysisService) standings(ctx context.Context) (*analysis.Standings, string, error) {
	if st, run, ok := s.cache.GetStandings(s.opts.Weeks); ok {
		return st, run, nil
	}
	engine, run := s.current()
	st, err := engine.Standings(ctx, s.opts.Weeks)
	if err != nil {
		return nil, "", err
	}
	s.cache.SaveStandings(st, run)
	return st, run, nil
}

func (s *AnalysisService) Standings(ctx context.Context, policyName string) (string, error) {
	policy, ok := analysis.PolicyByName(policyName)
	if !ok {
		return "", fmt.Errorf("unknown standings %q, use projected, actual or best", policyName)
	}

	st, run, err := s.standings(ctx)
	if err != nil {
		return "", fmt.Errorf("error building standings: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏆 *%s Standings (%s)*\n\n", policy.Title, analysis.WeekLabel(st.Weeks)))
	for i, row := range st.Table(policy) {
		sb.WriteString(fmt.Sprintf("%d. *%s*\n", i+1, row.Team.Name))
		if row.Played() > 0 {
			sb.WriteString(fmt.Sprintf("   Record: %d-%d-%d (%.2f)\n", row.Wins, row.Losses, row.Ties, row.WinPct))
		} else {
			sb.WriteString("   Record: 0-0-0\n")
		}
		sb.WriteString(fmt.Sprintf("   Points For: %s\n", row.PointsFor.StringFixed(1)))
		sb.WriteString(fmt.Sprintf("   Points Against: %s\n\n", row.PointsAgainst.StringFixed(1)))
	}
	if run != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s`\n", run))
	}

	return sb.String(), nil
}

func (s *AnalysisService) WeekScores(ctx context.Context, week int) (string, error) {
	matchups, err := s.store.Matchups(ctx)
	if err != nil {
		return "", fmt.Errorf("error fetching matchups: %w", err)
	}
	names, err := s.teamNames(ctx)
	if err != nil {
		return "", err
	}

	engine := s.currentEngine()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏈 *Week %d Scores*\n\n", week))

	found := false
	for _, m := range matchups {
		if m.Week != week {
			continue
		}
		found = true
		home, err := engine.TeamWeekScores(ctx, m.HomeTeamID, week)
		if err != nil {
			return "", fmt.Errorf("error scoring team %d: %w", m.HomeTeamID, err)
		}
		away, err := engine.TeamWeekScores(ctx, m.AwayTeamID, week)
		if err != nil {
			return "", fmt.Errorf("error scoring team %d: %w", m.AwayTeamID, err)
		}
		home, away = home.Rounded(), away.Rounded()

		sb.WriteString(fmt.Sprintf("*%s* vs *%s*\n", names[m.HomeTeamID], names[m.AwayTeamID]))
		sb.WriteString(fmt.Sprintf("Actual: %s - %s\n", home.Actual.StringFixed(1), away.Actual.StringFixed(1)))
		sb.WriteString(fmt.Sprintf("Projected: %s - %s\n", home.Projected.StringFixed(1), away.Projected.StringFixed(1)))
		sb.WriteString(fmt.Sprintf("Best Possible: %s - %s\n\n", home.Best.StringFixed(1), away.Best.StringFixed(1)))
	}

	if !found {
		sb.WriteString("No matchups scheduled.")
	}
	return sb.String(), nil
}

type teamEfficiency struct {
	name       string
	actual     float64
	best       float64
	efficiency float64
}

// Efficiency ranks managers by the share of their best possible points they
// actually started.
func (s *AnalysisService) Efficiency(ctx context.Context) (string, error) {
	names, err := s.teamNames(ctx)
	if err != nil {
		return "", err
	}
	series, err := s.currentEngine().EfficiencySeries(ctx, sortedIDs(names), s.opts.Weeks)
	if err != nil {
		return "", fmt.Errorf("error computing efficiency: %w", err)
	}

	totals := make(map[int]*teamEfficiency)
	for _, p := range series.Points {
		t, ok := totals[p.TeamID]
		if !ok {
			t = &teamEfficiency{name: names[p.TeamID]}
			totals[p.TeamID] = t
		}
		t.actual += p.X
		t.best += p.Y
	}

	ranked := make([]*teamEfficiency, 0, len(totals))
	for _, t := range totals {
		if t.best > 0 {
			t.efficiency = t.actual / t.best
		}
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].efficiency != ranked[j].efficiency {
			return ranked[i].efficiency > ranked[j].efficiency
		}
		return ranked[i].name < ranked[j].name
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🧠 *Manager Efficiency (%s)*\n\n", analysis.WeekLabel(s.opts.Weeks)))
	for i, t := range ranked {
		sb.WriteString(fmt.Sprintf("%d. *%s* %.1f%%\n", i+1, t.name, 100*t.efficiency))
		sb.WriteString(fmt.Sprintf("   %.1f of %.1f possible, %.1f left on the bench\n", t.actual, t.best, t.best-t.actual))
	}

	return sb.String(), nil
}

// ProjectionBias bootstraps the mean relative projection error of starters.
// An empty position covers every position.
func (s *AnalysisService) ProjectionBias(ctx context.Context, position string) (string, error) {
	players, err := s.playersInWeeks(ctx)
	if err != nil {
		return "", err
	}

	label := "All positions"
	if position != "" {
		label = strings.ToUpper(position)
	}

	res, n, err := s.bias(players, position)
	if errors.Is(err, analysis.ErrDegenerateInput) {
		return fmt.Sprintf("📊 No projected starters for %s in %s.", label, analysis.WeekLabel(s.opts.Weeks)), nil
	}
	if err != nil {
		return "", fmt.Errorf("error bootstrapping projection bias: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *ESPN Projection Bias: %s (%s)*\n\n", label, analysis.WeekLabel(s.opts.Weeks)))
	sb.WriteString(fmt.Sprintf("Starters: %d\n", n))
	sb.WriteString(fmt.Sprintf("Mean relative error: %+.1f%%\n", 100*res.Mean))
	sb.WriteString(fmt.Sprintf("%.0f%% CI: [%+.1f%%, %+.1f%%]\n\n", 100*(1-res.Alpha), 100*res.CILow, 100*res.CIHigh))
	switch {
	case res.CILow > 0:
		sb.WriteString("ESPN overprojects these players.")
	case res.CIHigh < 0:
		sb.WriteString("ESPN underprojects these players.")
	default:
		sb.WriteString("No significant bias.")
	}

	return sb.String(), nil
}

func (s *AnalysisService) bias(players []models.PlayerScoreRecord, position string) (models.BootstrapResult, int, error) {
	errs := analysis.RelativeErrors(players, analysis.ErrorFilter{
		Position:    position,
		ExcludeSlot: models.SlotBench,
	})
	res, err := analysis.Bootstrap(errs, s.opts.Samples, analysis.Mean, s.opts.Alpha, s.bootstrapOptions()...)
	return res, len(errs), err
}

func (s *AnalysisService) bootstrapOptions() []analysis.BootstrapOption {
	opts := []analysis.BootstrapOption{analysis.WithWorkers(s.opts.Workers)}
	if s.opts.Seed != 0 {
		opts = append(opts, analysis.WithRand(rand.New(rand.NewPCG(s.opts.Seed, s.opts.Seed))))
	}
	return opts
}

// Export writes standings, plot series, bootstrap distributions and per-player
// errors under dir.
func (s *AnalysisService) Export(ctx context.Context, dir string) ([]string, error) {
	if len(s.opts.Weeks) == 0 {
		return nil, errors.New("no weeks selected")
	}
	st, _, err := s.standings(ctx)
	if err != nil {
		return nil, fmt.Errorf("error building standings: %w", err)
	}
	names, err := s.teamNames(ctx)
	if err != nil {
		return nil, err
	}
	ids := sortedIDs(names)

	engine := s.currentEngine()
	accuracy, err := engine.AccuracySeries(ctx, ids, s.opts.Weeks)
	if err != nil {
		return nil, err
	}
	efficiency, err := engine.EfficiencySeries(ctx, ids, s.opts.Weeks)
	if err != nil {
		return nil, err
	}

	players, err := s.playersInWeeks(ctx)
	if err != nil {
		return nil, err
	}
	boot := make(map[string]models.BootstrapResult)
	for _, pos := range append([]string{""}, BiasPositions...) {
		res, _, err := s.bias(players, pos)
		if errors.Is(err, analysis.ErrDegenerateInput) {
			slog.Warn("Skipping bootstrap", "position", pos, "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		boot[biasName(pos)] = res
	}

	lastWeek := s.opts.Weeks[len(s.opts.Weeks)-1]
	weekPlayers, err := s.store.PlayersByWeek(ctx, lastWeek)
	if err != nil {
		return nil, fmt.Errorf("error fetching players for week %d: %w", lastWeek, err)
	}

	return export.Dir{Root: dir}.WriteAll(export.Report{
		Weeks:        s.opts.Weeks,
		Standings:    st,
		Series:       []analysis.Series{accuracy, efficiency},
		Bootstrap:    boot,
		ErrorWeek:    lastWeek,
		PlayerErrors: analysis.PlayerErrors(weekPlayers),
	})
}

func biasName(position string) string {
	if position == "" {
		return "all"
	}
	return strings.ToLower(strings.ReplaceAll(position, "/", ""))
}

func (s *AnalysisService) playersInWeeks(ctx context.Context) ([]models.PlayerScoreRecord, error) {
	var players []models.PlayerScoreRecord
	for _, week := range s.opts.Weeks {
		p, err := s.store.PlayersByWeek(ctx, week)
		if err != nil {
			return nil, fmt.Errorf("error fetching week %d players: %w", week, err)
		}
		players = append(players, p...)
	}
	return players, nil
}

func (s *AnalysisService) teamNames(ctx context.Context) (map[int]string, error) {
	teams, err := s.store.Teams(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching teams: %w", err)
	}
	names := make(map[int]string, len(teams))
	for _, t := range teams {
		names[t.TeamID] = t.Name
	}
	return names, nil
}

func sortedIDs(names map[int]string) []int {
	ids := make([]int, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
