package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/omarshaarawi/ffstats/internal/models"
	"github.com/shopspring/decimal"
)

func teams(ids ...int) []models.Team {
	var out []models.Team
	for _, id := range ids {
		out = append(out, models.Team{TeamID: id, Abbr: "T" + string(rune('A'+id-1))})
	}
	return out
}

// fixedScores serves scores from a table keyed by team then week; missing
// entries score zero.
func fixedScores(table map[int]map[int]TeamScores) ScoreFunc {
	return func(_ context.Context, teamID, week int) (TeamScores, error) {
		return table[teamID][week], nil
	}
}

func same(v string) TeamScores {
	d := decimal.RequireFromString(v)
	return TeamScores{Projected: d, Actual: d, Best: d}
}

func TestBuildStandings_TiedWeekSplitsPct(t *testing.T) {
	matchups := []models.Matchup{{Week: 1, HomeTeamID: 1, AwayTeamID: 2}}
	score := fixedScores(map[int]map[int]TeamScores{
		1: {1: same("100.4")},
		2: {1: same("100.4")},
	})

	s, err := BuildStandings(context.Background(), matchups, score, []int{1}, teams(1, 2))
	if err != nil {
		t.Fatalf("BuildStandings: %v", err)
	}

	for _, p := range Policies {
		for _, row := range s.Table(p) {
			if row.Wins != 0 || row.Losses != 0 || row.Ties != 1 {
				t.Errorf("%s team %d W-L-T = %d-%d-%d, want 0-0-1", p.Name, row.Team.TeamID, row.Wins, row.Losses, row.Ties)
			}
			if row.WinPct != 0.5 {
				t.Errorf("%s team %d PCT = %v, want 0.5", p.Name, row.Team.TeamID, row.WinPct)
			}
			if !row.PointsFor.Equal(decimal.RequireFromString("100.4")) || !row.PointsAgainst.Equal(decimal.RequireFromString("100.4")) {
				t.Errorf("%s team %d PF/PA = %s/%s, want 100.4/100.4", p.Name, row.Team.TeamID, row.PointsFor, row.PointsAgainst)
			}
		}
	}
}

func TestBuildStandings_ExactTieNotRoundedAway(t *testing.T) {
	// 100.44 and 100.36 both display as 100.4 but are not a tie.
	matchups := []models.Matchup{{Week: 1, HomeTeamID: 1, AwayTeamID: 2}}
	score := fixedScores(map[int]map[int]TeamScores{
		1: {1: same("100.44")},
		2: {1: same("100.36")},
	})

	s, err := BuildStandings(context.Background(), matchups, score, []int{1}, teams(1, 2))
	if err != nil {
		t.Fatalf("BuildStandings: %v", err)
	}
	if top := s.Actual[0]; top.Team.TeamID != 1 || top.Wins != 1 {
		t.Errorf("top row = team %d with %d wins, want team 1 with 1 win", top.Team.TeamID, top.Wins)
	}
}

func TestBuildStandings_PoliciesDisagree(t *testing.T) {
	matchups := []models.Matchup{{Week: 1, HomeTeamID: 1, AwayTeamID: 2}}
	score := fixedScores(map[int]map[int]TeamScores{
		1: {1: {Projected: decimal.NewFromInt(120), Actual: decimal.NewFromInt(90), Best: decimal.NewFromInt(95)}},
		2: {1: {Projected: decimal.NewFromInt(100), Actual: decimal.NewFromInt(92), Best: decimal.NewFromInt(130)}},
	})

	s, err := BuildStandings(context.Background(), matchups, score, []int{1}, teams(1, 2))
	if err != nil {
		t.Fatalf("BuildStandings: %v", err)
	}

	winners := map[string]int{
		Projected.Name: 1,
		Actual.Name:    2,
		Best.Name:      2,
	}
	for _, p := range Policies {
		if got := s.Table(p)[0].Team.TeamID; got != winners[p.Name] {
			t.Errorf("%s leader = team %d, want team %d", p.Name, got, winners[p.Name])
		}
	}
}

func TestBuildStandings_RecordsAddUp(t *testing.T) {
	// Round robin over four teams and three weeks.
	matchups := []models.Matchup{
		{Week: 1, HomeTeamID: 1, AwayTeamID: 2}, {Week: 1, HomeTeamID: 3, AwayTeamID: 4},
		{Week: 2, HomeTeamID: 1, AwayTeamID: 3}, {Week: 2, HomeTeamID: 2, AwayTeamID: 4},
		{Week: 3, HomeTeamID: 1, AwayTeamID: 4}, {Week: 3, HomeTeamID: 2, AwayTeamID: 3},
	}
	table := map[int]map[int]TeamScores{}
	for team := 1; team <= 4; team++ {
		table[team] = map[int]TeamScores{}
		for week := 1; week <= 3; week++ {
			table[team][week] = same(decimal.NewFromInt(int64(80 + team*week%7*5)).String())
		}
	}

	s, err := BuildStandings(context.Background(), matchups, fixedScores(table), []int{1, 2, 3}, teams(1, 2, 3, 4))
	if err != nil {
		t.Fatalf("BuildStandings: %v", err)
	}

	for _, p := range Policies {
		rows := s.Table(p)
		if len(rows) != 4 {
			t.Fatalf("%s: %d rows, want 4", p.Name, len(rows))
		}
		wins, losses := 0, 0
		pf, pa := decimal.Zero, decimal.Zero
		for i, row := range rows {
			if row.Played() != 3 {
				t.Errorf("%s team %d played %d, want 3", p.Name, row.Team.TeamID, row.Played())
			}
			if row.WinPct < 0 || row.WinPct > 1 {
				t.Errorf("%s team %d PCT = %v outside [0, 1]", p.Name, row.Team.TeamID, row.WinPct)
			}
			if i > 0 && rows[i-1].Wins < row.Wins {
				t.Errorf("%s rows not sorted by wins at %d", p.Name, i)
			}
			wins += row.Wins
			losses += row.Losses
			pf = pf.Add(row.PointsFor)
			pa = pa.Add(row.PointsAgainst)
		}
		if wins != losses {
			t.Errorf("%s: total wins %d != total losses %d", p.Name, wins, losses)
		}
		if !pf.Equal(pa) {
			t.Errorf("%s: total PF %s != total PA %s", p.Name, pf, pa)
		}
	}
}

func TestBuildStandings_StableForFullTies(t *testing.T) {
	matchups := []models.Matchup{
		{Week: 1, HomeTeamID: 3, AwayTeamID: 1},
		{Week: 1, HomeTeamID: 2, AwayTeamID: 4},
	}
	score := fixedScores(map[int]map[int]TeamScores{
		1: {1: same("90")}, 2: {1: same("90")}, 3: {1: same("90")}, 4: {1: same("90")},
	})

	s, err := BuildStandings(context.Background(), matchups, score, []int{1}, teams(1, 2, 3, 4))
	if err != nil {
		t.Fatalf("BuildStandings: %v", err)
	}
	for i, row := range s.Actual {
		if row.Team.TeamID != i+1 {
			t.Errorf("row %d = team %d, want team %d", i, row.Team.TeamID, i+1)
		}
	}
}

func TestBuildStandings_NoGamesLeavesRowsEmpty(t *testing.T) {
	s, err := BuildStandings(context.Background(), nil, fixedScores(nil), []int{1}, teams(1, 2))
	if err != nil {
		t.Fatalf("BuildStandings: %v", err)
	}
	for _, row := range s.Projected {
		if row.Played() != 0 || row.WinPct != 0 || !row.PointsFor.IsZero() {
			t.Errorf("team %d = %+v, want an empty row", row.Team.TeamID, row)
		}
	}
}

func TestBuildStandings_UnknownTeam(t *testing.T) {
	matchups := []models.Matchup{{Week: 1, HomeTeamID: 1, AwayTeamID: 9}}
	_, err := BuildStandings(context.Background(), matchups, fixedScores(nil), []int{1}, teams(1, 2))
	if !errors.Is(err, ErrUnknownTeam) {
		t.Errorf("err = %v, want ErrUnknownTeam", err)
	}
}

func TestBuildStandings_OnlyRequestedWeeks(t *testing.T) {
	matchups := []models.Matchup{
		{Week: 1, HomeTeamID: 1, AwayTeamID: 2},
		{Week: 2, HomeTeamID: 1, AwayTeamID: 2},
	}
	score := fixedScores(map[int]map[int]TeamScores{
		1: {1: same("100"), 2: same("50")},
		2: {1: same("80"), 2: same("70")},
	})

	s, err := BuildStandings(context.Background(), matchups, score, []int{2}, teams(1, 2))
	if err != nil {
		t.Fatalf("BuildStandings: %v", err)
	}
	if top := s.Actual[0]; top.Team.TeamID != 2 || top.Played() != 1 {
		t.Errorf("top row = team %d with %d games, want team 2 with 1 game", top.Team.TeamID, top.Played())
	}
}

func TestWinPct(t *testing.T) {
	tests := []struct {
		w, l, t int
		want    float64
	}{
		{1, 0, 0, 1},
		{0, 1, 0, 0},
		{0, 0, 1, 0.5},
		{2, 1, 0, 0.67},
		{1, 1, 1, 0.5},
		{1, 2, 0, 0.33},
	}
	for _, tt := range tests {
		got, err := WinPct(tt.w, tt.l, tt.t)
		if err != nil {
			t.Errorf("WinPct(%d, %d, %d): %v", tt.w, tt.l, tt.t, err)
			continue
		}
		if got != tt.want {
			t.Errorf("WinPct(%d, %d, %d) = %v, want %v", tt.w, tt.l, tt.t, got, tt.want)
		}
	}

	if _, err := WinPct(0, 0, 0); !errors.Is(err, ErrDegenerateInput) {
		t.Errorf("WinPct(0, 0, 0) err = %v, want ErrDegenerateInput", err)
	}
}

func TestPolicyByName(t *testing.T) {
	p, ok := PolicyByName("best")
	if !ok || p.Title != "Best Possible" {
		t.Errorf("PolicyByName(best) = %+v, %v", p, ok)
	}
	if _, ok := PolicyByName("median"); ok {
		t.Error("PolicyByName(median) found a policy")
	}
}
