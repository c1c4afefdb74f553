package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/omarshaarawi/ffstats/internal/api/fantasy"
	"github.com/omarshaarawi/ffstats/internal/models"
	"github.com/omarshaarawi/ffstats/internal/repository/memory"
)

type fixtureSyncer struct {
	calls int
}

func (f *fixtureSyncer) Sync(ctx context.Context, weeks []int, w fantasy.Writer) (fantasy.SyncResult, error) {
	f.calls++
	teams := []models.Team{
		{TeamID: 1, Abbr: "GRNK", Name: "Gronk Smash"},
		{TeamID: 2, Abbr: "BW", Name: "Bench Warmers"},
	}
	for _, t := range teams {
		if err := w.SaveTeam(ctx, t); err != nil {
			return fantasy.SyncResult{}, err
		}
	}
	slots := []models.SlotCount{
		{Position: "QB", Slots: 1}, {Position: "RB", Slots: 1}, {Position: "WR", Slots: 0},
		{Position: "TE", Slots: 0}, {Position: "FLEX", Slots: 0}, {Position: "DST", Slots: 0},
		{Position: "K", Slots: 0},
	}
	if err := w.SaveSlots(ctx, slots); err != nil {
		return fantasy.SyncResult{}, err
	}
	if err := w.ReplaceMatchups(ctx, []models.Matchup{{Week: 1, HomeTeamID: 1, AwayTeamID: 2}}); err != nil {
		return fantasy.SyncResult{}, err
	}
	players := []models.PlayerScoreRecord{
		{Week: 1, TeamID: 1, Slot: "QB", Player: "QB A", Position: "QB", ProjectedPoints: 20, ActualPoints: 15},
		{Week: 1, TeamID: 1, Slot: "RB", Player: "RB A", Position: "RB", ProjectedPoints: 10, ActualPoints: 5},
		{Week: 1, TeamID: 1, Slot: "Bench", Player: "RB B", Position: "RB", ProjectedPoints: 8, ActualPoints: 12},
		{Week: 1, TeamID: 2, Slot: "QB", Player: "QB C", Position: "QB", ProjectedPoints: 18, ActualPoints: 22},
		{Week: 1, TeamID: 2, Slot: "RB", Player: "RB C", Position: "RB", ProjectedPoints: 9, ActualPoints: 9},
	}
	if err := w.SavePlayers(ctx, players); err != nil {
		return fantasy.SyncResult{}, err
	}
	return fantasy.SyncResult{Teams: 2, Matchups: 1, Players: len(players)}, nil
}

func newTestService(t *testing.T) (*AnalysisService, *fixtureSyncer) {
	t.Helper()
	syncer := &fixtureSyncer{}
	repo := memory.NewRepository()
	svc := NewAnalysisService(syncer, repo, repo, Options{
		Weeks:   []int{1},
		Samples: 200,
		Alpha:   0.05,
		Workers: 2,
		Seed:    7,
	})
	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return svc, syncer
}

func TestAnalysisService_Standings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Projected 30 vs 27, actual 20 vs 31, best 27 vs 31.
	tests := map[string]string{
		"projected": "1. *Gronk Smash*",
		"actual":    "1. *Bench Warmers*",
		"best":      "1. *Bench Warmers*",
	}
	for policy, leader := range tests {
		report, err := svc.Standings(ctx, policy)
		if err != nil {
			t.Fatalf("Standings(%s): %v", policy, err)
		}
		if !strings.Contains(report, leader) {
			t.Errorf("Standings(%s) missing %q:\n%s", policy, leader, report)
		}
	}

	report, _ := svc.Standings(ctx, "actual")
	for _, want := range []string{"Actual Standings (Week 1)", "Record: 1-0-0 (1.00)", "Points For: 31.0"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}

	if _, err := svc.Standings(ctx, "median"); err == nil {
		t.Error("Standings accepted an unknown policy")
	}
}

func TestAnalysisService_WeekScores(t *testing.T) {
	svc, _ := newTestService(t)

	report, err := svc.WeekScores(context.Background(), 1)
	if err != nil {
		t.Fatalf("WeekScores: %v", err)
	}
	for _, want := range []string{"*Gronk Smash* vs *Bench Warmers*", "Actual: 20.0 - 31.0", "Best Possible: 27.0 - 31.0"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}

	empty, err := svc.WeekScores(context.Background(), 9)
	if err != nil || !strings.Contains(empty, "No matchups") {
		t.Errorf("WeekScores(9) = %q, %v", empty, err)
	}
}

func TestAnalysisService_Efficiency(t *testing.T) {
	svc, _ := newTestService(t)

	report, err := svc.Efficiency(context.Background())
	if err != nil {
		t.Fatalf("Efficiency: %v", err)
	}
	first := strings.Index(report, "Bench Warmers")
	second := strings.Index(report, "Gronk Smash")
	if first < 0 || second < first {
		t.Errorf("want Bench Warmers (100%%) ranked above Gronk Smash:\n%s", report)
	}
	if !strings.Contains(report, "7.0 left on the bench") {
		t.Errorf("report missing bench points:\n%s", report)
	}
}

func TestAnalysisService_ProjectionBias(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	report, err := svc.ProjectionBias(ctx, "qb")
	if err != nil {
		t.Fatalf("ProjectionBias: %v", err)
	}
	if !strings.Contains(report, "ESPN Projection Bias: QB") || !strings.Contains(report, "Starters: 2") {
		t.Errorf("unexpected report:\n%s", report)
	}

	none, err := svc.ProjectionBias(ctx, "K")
	if err != nil || !strings.Contains(none, "No projected starters") {
		t.Errorf("ProjectionBias(K) = %q, %v", none, err)
	}
}

func TestAnalysisService_Export(t *testing.T) {
	svc, _ := newTestService(t)
	dir := t.TempDir()

	written, err := svc.Export(context.Background(), dir)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	want := make(map[string]bool)
	for _, path := range []string{
		filepath.Join(dir, "tables", "actual_standings_week_1.csv"),
		filepath.Join(dir, "figures", "manager_efficiency_week_1.csv"),
		filepath.Join(dir, "tables", "bootstrap_all.csv"),
		filepath.Join(dir, "tables", "bootstrap_qb.csv"),
		filepath.Join(dir, "figures", "abs_error_week_1.csv"),
		filepath.Join(dir, "figures", "rel_error_week_1.csv"),
	} {
		want[path] = false
	}
	for _, path := range written {
		if _, ok := want[path]; ok {
			want[path] = true
		}
		if strings.HasSuffix(path, "bootstrap_k.csv") {
			t.Errorf("wrote %s for a position with no starters", path)
		}
	}
	for path, seen := range want {
		if !seen {
			t.Errorf("Export did not write %s", path)
		}
	}
}

func TestAnalysisService_StandingsCachedUntilRefresh(t *testing.T) {
	svc, syncer := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Standings(ctx, "actual"); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := svc.cache.GetStandings(svc.Weeks()); !ok {
		t.Fatal("standings not cached")
	}
	if _, err := svc.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := svc.cache.GetStandings(svc.Weeks()); ok {
		t.Error("standings cache survived a refresh")
	}
	if syncer.calls != 2 {
		t.Errorf("Sync called %d times, want 2", syncer.calls)
	}
}

func TestAnalysisService_RefreshWithoutSource(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewAnalysisService(nil, repo, repo, Options{Weeks: []int{1}})
	if _, err := svc.Refresh(context.Background()); err == nil {
		t.Error("Refresh succeeded without a source")
	}
}

func TestAnalysisService_ExportPlayerErrorsUsesLastWeek(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	svc := NewAnalysisService(&fixtureSyncer{}, repo, repo, Options{Weeks: []int{1}, Samples: 50, Alpha: 0.1, Workers: 1, Seed: 3})
	if _, err := svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	err := repo.SavePlayers(ctx, []models.PlayerScoreRecord{
		{Week: 2, TeamID: 1, Slot: "QB", Player: "Next Week QB", Position: "QB", ProjectedPoints: 25, ActualPoints: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if _, err := svc.Export(ctx, dir); err != nil {
		t.Fatalf("Export: %v", err)
	}

	for _, name := range []string{"abs_error_week_1.csv", "rel_error_week_1.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, "figures", name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if strings.Contains(string(data), "Next Week QB") {
			t.Errorf("%s includes a week outside the window:\n%s", name, data)
		}
		if !strings.Contains(string(data), "QB A") {
			t.Errorf("%s is missing week 1 players:\n%s", name, data)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "figures", "abs_error_week_2.csv")); err == nil {
		t.Error("wrote errors for week 2")
	}
}

func runID(t *testing.T, report string) uuid.UUID {
	t.Helper()
	_, rest, ok := strings.Cut(report, "Run: `")
	if !ok {
		t.Fatalf("no run in report:\n%s", report)
	}
	id, err := uuid.Parse(strings.SplitN(rest, "`", 2)[0])
	if err != nil {
		t.Fatalf("run in report: %v", err)
	}
	return id
}

func TestAnalysisService_StandingsCarryRefreshRun(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	svc := NewAnalysisService(&fixtureSyncer{}, repo, repo, Options{Weeks: []int{1}, Samples: 10, Alpha: 0.1})

	readOnly := memory.NewRepository()
	if _, err := (&fixtureSyncer{}).Sync(ctx, []int{1}, readOnly); err != nil {
		t.Fatal(err)
	}
	report, err := NewAnalysisService(nil, readOnly, readOnly, Options{Weeks: []int{1}}).Standings(ctx, "actual")
	if err != nil || strings.Contains(report, "Run:") {
		t.Fatalf("Standings without a refresh = %q, %v", report, err)
	}

	first, err := svc.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	standings, err := svc.Standings(ctx, "actual")
	if err != nil {
		t.Fatal(err)
	}
	if runID(t, standings) != runID(t, first) {
		t.Errorf("standings run differs from refresh run")
	}
	if _, run, ok := repo.GetStandings([]int{1}); !ok || run != runID(t, first).String() {
		t.Errorf("cached run = %q, %v", run, ok)
	}

	second, err := svc.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if runID(t, second) == runID(t, first) {
		t.Error("two refreshes share a run")
	}
	standings, _ = svc.Standings(ctx, "actual")
	if runID(t, standings) != runID(t, second) {
		t.Error("standings still report the previous run")
	}
}
