package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/omarshaarawi/ffstats/internal/models"
)

// LeagueData is the read-only view of a scraped league the engine scores from.
type LeagueData interface {
	Teams(ctx context.Context) ([]models.Team, error)
	SlotCounts(ctx context.Context) ([]models.SlotCount, error)
	Matchups(ctx context.Context) ([]models.Matchup, error)
	Players(ctx context.Context, teamID, week int) ([]models.PlayerScoreRecord, error)
}

type Engine struct {
	data LeagueData

	mu    sync.Mutex
	rules *SlotRules
}

func NewEngine(data LeagueData) *Engine {
	return &Engine{data: data}
}

// SlotRules loads and validates the league slot rules on first use.
func (e *Engine) SlotRules(ctx context.Context) (SlotRules, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rules != nil {
		return *e.rules, nil
	}

	counts, err := e.data.SlotCounts(ctx)
	if err != nil {
		return SlotRules{}, fmt.Errorf("loading slot rules: %w", err)
	}
	rules, err := NewSlotRules(counts)
	if err != nil {
		return SlotRules{}, err
	}
	e.rules = &rules
	return rules, nil
}

func (e *Engine) TeamWeekScores(ctx context.Context, teamID, week int) (TeamScores, error) {
	rules, err := e.SlotRules(ctx)
	if err != nil {
		return TeamScores{}, err
	}
	players, err := e.data.Players(ctx, teamID, week)
	if err != nil {
		return TeamScores{}, fmt.Errorf("loading players for team %d week %d: %w", teamID, week, err)
	}
	return TeamWeekScores(players, rules), nil
}

func (e *Engine) BestLineup(ctx context.Context, teamID, week int) ([]LineupSlot, error) {
	rules, err := e.SlotRules(ctx)
	if err != nil {
		return nil, err
	}
	players, err := e.data.Players(ctx, teamID, week)
	if err != nil {
		return nil, fmt.Errorf("loading players for team %d week %d: %w", teamID, week, err)
	}
	return BestLineup(players, rules), nil
}

// Standings builds the three policy tables over every team in the league.
func (e *Engine) Standings(ctx context.Context, weeks []int) (*Standings, error) {
	teams, err := e.data.Teams(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading teams: %w", err)
	}
	matchups, err := e.data.Matchups(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading matchups: %w", err)
	}

	return BuildStandings(ctx, matchups, e.memoScores(), weeks, teams)
}

// memoScores scores each team-week once per call site.
func (e *Engine) memoScores() ScoreFunc {
	type teamWeek struct{ team, week int }
	memo := make(map[teamWeek]TeamScores)
	return func(ctx context.Context, teamID, week int) (TeamScores, error) {
		key := teamWeek{teamID, week}
		if s, ok := memo[key]; ok {
			return s, nil
		}
		s, err := e.TeamWeekScores(ctx, teamID, week)
		if err != nil {
			return TeamScores{}, err
		}
		memo[key] = s
		return s, nil
	}
}
