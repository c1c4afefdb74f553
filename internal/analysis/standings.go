package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/omarshaarawi/ffstats/internal/models"
	"github.com/shopspring/decimal"
)

// Policy selects which of a team's week scores decides a matchup.
type Policy struct {
	Name  string
	Title string
	Score func(TeamScores) decimal.Decimal
}

var (
	Projected = Policy{Name: "projected", Title: "Projected", Score: func(s TeamScores) decimal.Decimal { return s.Projected }}
	Actual    = Policy{Name: "actual", Title: "Actual", Score: func(s TeamScores) decimal.Decimal { return s.Actual }}
	Best      = Policy{Name: "best", Title: "Best Possible", Score: func(s TeamScores) decimal.Decimal { return s.Best }}
)

var Policies = []Policy{Projected, Actual, Best}

func PolicyByName(name string) (Policy, bool) {
	for _, p := range Policies {
		if p.Name == name {
			return p, true
		}
	}
	return Policy{}, false
}

type Standings struct {
	Weeks     []int
	Projected []models.StandingsRow
	Actual    []models.StandingsRow
	Best      []models.StandingsRow
}

func (s *Standings) Table(p Policy) []models.StandingsRow {
	switch p.Name {
	case Projected.Name:
		return s.Projected
	case Actual.Name:
		return s.Actual
	case Best.Name:
		return s.Best
	}
	return nil
}

// ScoreFunc returns the scores of one team in one week.
type ScoreFunc func(ctx context.Context, teamID, week int) (TeamScores, error)

type matchResult struct {
	home, away             int
	homeScores, awayScores TeamScores
}

// BuildStandings folds every matchup of the given weeks into one table per
// policy. Rows follow the order of teams until the final stable sort by wins,
// win percentage, points for and points against, all descending.
func BuildStandings(ctx context.Context, matchups []models.Matchup, score ScoreFunc, weeks []int, teams []models.Team) (*Standings, error) {
	index := make(map[int]int, len(teams))
	for i, t := range teams {
		if _, ok := index[t.TeamID]; ok {
			return nil, fmt.Errorf("team %d listed twice", t.TeamID)
		}
		index[t.TeamID] = i
	}

	byWeek := make(map[int][]models.Matchup)
	for _, m := range matchups {
		byWeek[m.Week] = append(byWeek[m.Week], m)
	}

	var results []matchResult
	for _, week := range weeks {
		for _, m := range byWeek[week] {
			home, ok := index[m.HomeTeamID]
			if !ok {
				return nil, fmt.Errorf("week %d home team %d: %w", week, m.HomeTeamID, ErrUnknownTeam)
			}
			away, ok := index[m.AwayTeamID]
			if !ok {
				return nil, fmt.Errorf("week %d away team %d: %w", week, m.AwayTeamID, ErrUnknownTeam)
			}

			homeScores, err := score(ctx, m.HomeTeamID, week)
			if err != nil {
				return nil, fmt.Errorf("scoring team %d week %d: %w", m.HomeTeamID, week, err)
			}
			awayScores, err := score(ctx, m.AwayTeamID, week)
			if err != nil {
				return nil, fmt.Errorf("scoring team %d week %d: %w", m.AwayTeamID, week, err)
			}

			results = append(results, matchResult{
				home:       home,
				away:       away,
				homeScores: homeScores,
				awayScores: awayScores,
			})
		}
	}

	standings := &Standings{Weeks: append([]int(nil), weeks...)}
	for _, p := range Policies {
		rows, err := fold(p, teams, results)
		if err != nil {
			return nil, fmt.Errorf("%s standings: %w", p.Name, err)
		}
		switch p.Name {
		case Projected.Name:
			standings.Projected = rows
		case Actual.Name:
			standings.Actual = rows
		case Best.Name:
			standings.Best = rows
		}
	}

	return standings, nil
}

func fold(policy Policy, teams []models.Team, results []matchResult) ([]models.StandingsRow, error) {
	rows := make([]models.StandingsRow, len(teams))
	for i, t := range teams {
		rows[i] = models.StandingsRow{Team: t, PointsFor: decimal.Zero, PointsAgainst: decimal.Zero}
	}

	for _, r := range results {
		home, away := &rows[r.home], &rows[r.away]
		homeScore, awayScore := policy.Score(r.homeScores), policy.Score(r.awayScores)

		switch homeScore.Cmp(awayScore) {
		case 1:
			home.Wins++
			away.Losses++
		case -1:
			home.Losses++
			away.Wins++
		default:
			home.Ties++
			away.Ties++
		}

		if err := record(home, homeScore, awayScore); err != nil {
			return nil, err
		}
		if err := record(away, awayScore, homeScore); err != nil {
			return nil, err
		}
	}

	sortStandings(rows)
	return rows, nil
}

func record(row *models.StandingsRow, own, opponent decimal.Decimal) error {
	pct, err := WinPct(row.Wins, row.Losses, row.Ties)
	if err != nil {
		return fmt.Errorf("team %d: %w", row.Team.TeamID, err)
	}
	row.WinPct = pct
	row.PointsFor = row.PointsFor.Add(own)
	row.PointsAgainst = row.PointsAgainst.Add(opponent)
	return nil
}

// WinPct is (wins + ties/2) / games, rounded to two decimals.
func WinPct(wins, losses, ties int) (float64, error) {
	games := wins + losses + ties
	if games == 0 {
		return 0, fmt.Errorf("win percentage with no games played: %w", ErrDegenerateInput)
	}
	pct := (float64(wins) + 0.5*float64(ties)) / float64(games)
	return math.Round(pct*100) / 100, nil
}

func sortStandings(rows []models.StandingsRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		if rows[i].WinPct != rows[j].WinPct {
			return rows[i].WinPct > rows[j].WinPct
		}
		if c := rows[i].PointsFor.Cmp(rows[j].PointsFor); c != 0 {
			return c > 0
		}
		return rows[i].PointsAgainst.Cmp(rows[j].PointsAgainst) > 0
	})
}
