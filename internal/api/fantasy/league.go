package fantasy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/omarshaarawi/ffstats/internal/models"
)

const nameThreshold = 0.6

// Source is the league website. *espn.API implements it.
type Source interface {
	NumTeams(ctx context.Context) (int, error)
	Team(ctx context.Context, teamID int) (models.Team, error)
	SlotCounts(ctx context.Context) ([]models.SlotCount, error)
	Schedule(ctx context.Context, matchupsPerWeek int) ([]models.Matchup, error)
	PlayerRecords(ctx context.Context, teamID, week int) ([]models.PlayerScoreRecord, error)
}

// Writer persists a scraped league.
type Writer interface {
	SaveTeam(ctx context.Context, team models.Team) error
	SaveSlots(ctx context.Context, slots []models.SlotCount) error
	ReplaceMatchups(ctx context.Context, matchups []models.Matchup) error
	SavePlayers(ctx context.Context, players []models.PlayerScoreRecord) error
}

type API struct {
	source Source
}

func NewAPI(source Source) *API {
	return &API{source: source}
}

type SyncResult struct {
	Teams    int
	Matchups int
	Players  int
}

// Sync scrapes teams, roster slots, the schedule and every team's players for
// the given weeks, one page at a time, and writes them to w.
func (a *API) Sync(ctx context.Context, weeks []int, w Writer) (SyncResult, error) {
	var res SyncResult

	numTeams, err := a.source.NumTeams(ctx)
	if err != nil {
		return res, err
	}
	if numTeams < 2 {
		return res, fmt.Errorf("league has %d teams", numTeams)
	}
	slog.Info("Syncing league", "teams", numTeams, "weeks", weeks)

	teams := make([]models.Team, 0, numTeams)
	for teamID := 1; teamID <= numTeams; teamID++ {
		team, err := a.source.Team(ctx, teamID)
		if err != nil {
			return res, err
		}
		if err := w.SaveTeam(ctx, team); err != nil {
			return res, fmt.Errorf("saving team %d: %w", teamID, err)
		}
		teams = append(teams, team)
	}
	res.Teams = len(teams)
	slog.Info("Teams written", "count", res.Teams)

	slots, err := a.source.SlotCounts(ctx)
	if err != nil {
		return res, err
	}
	if err := w.SaveSlots(ctx, slots); err != nil {
		return res, fmt.Errorf("saving slots: %w", err)
	}
	slog.Info("Slots written", "count", len(slots))

	schedule, err := a.source.Schedule(ctx, numTeams/2)
	if err != nil {
		return res, err
	}
	matchups, err := ResolveTeams(schedule, teams)
	if err != nil {
		return res, err
	}
	if err := w.ReplaceMatchups(ctx, matchups); err != nil {
		return res, fmt.Errorf("saving matchups: %w", err)
	}
	res.Matchups = len(matchups)
	slog.Info("Matchups written", "count", res.Matchups)

	for _, week := range weeks {
		for _, team := range teams {
			players, err := a.source.PlayerRecords(ctx, team.TeamID, week)
			if err != nil {
				return res, err
			}
			if err := w.SavePlayers(ctx, players); err != nil {
				return res, fmt.Errorf("saving players for team %d week %d: %w", team.TeamID, week, err)
			}
			res.Players += len(players)
		}
		slog.Info("Players written", "week", week)
	}

	return res, nil
}

// ResolveTeams fills in team IDs for matchups parsed by team name.
func ResolveTeams(matchups []models.Matchup, teams []models.Team) ([]models.Matchup, error) {
	resolved := make([]models.Matchup, len(matchups))
	for i, m := range matchups {
		home, err := MatchTeam(m.Home, teams)
		if err != nil {
			return nil, fmt.Errorf("week %d home team: %w", m.Week, err)
		}
		away, err := MatchTeam(m.Away, teams)
		if err != nil {
			return nil, fmt.Errorf("week %d away team: %w", m.Week, err)
		}
		m.HomeTeamID, m.AwayTeamID = home.TeamID, away.TeamID
		m.Home, m.Away = home.Name, away.Name
		resolved[i] = m
	}
	return resolved, nil
}

// MatchTeam finds a team by case-insensitive name, falling back to the most
// similar name by Levenshtein distance when it is similar enough.
func MatchTeam(name string, teams []models.Team) (models.Team, error) {
	for _, t := range teams {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}

	var bestMatch *models.Team
	bestScore := -1.0
	for i, t := range teams {
		a, b := strings.ToLower(name), strings.ToLower(t.Name)
		distance := fuzzy.LevenshteinDistance(a, b)
		maxLen := float64(max(utf8.RuneCountInString(a), utf8.RuneCountInString(b)))
		similarity := 1 - float64(distance)/maxLen

		if similarity > nameThreshold && similarity > bestScore {
			bestScore = similarity
			bestMatch = &teams[i]
		}
	}

	if bestMatch == nil {
		return models.Team{}, fmt.Errorf("team not found: %s", name)
	}
	return *bestMatch, nil
}
