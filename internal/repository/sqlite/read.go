package sqlite

import (
	"context"
	"database/sql"

	"github.com/omarshaarawi/ffstats/internal/models"
)

func (s *Store) Teams(ctx context.Context) ([]models.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, team_abbr, team_name, division, owner, co_owner
		FROM Teams
		ORDER BY team_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		var abbr, name, division, owner, coOwner sql.NullString
		if err := rows.Scan(&t.TeamID, &abbr, &name, &division, &owner, &coOwner); err != nil {
			return nil, err
		}
		t.Abbr, t.Name, t.Division = abbr.String, name.String, division.String
		t.Owner, t.CoOwner = owner.String, coOwner.String
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *Store) SlotCounts(ctx context.Context) ([]models.SlotCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT position, slots FROM Slots ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.SlotCount
	for rows.Next() {
		var c models.SlotCount
		if err := rows.Scan(&c.Position, &c.Slots); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *Store) Matchups(ctx context.Context) ([]models.Matchup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT week, home_id, away_id, home, away
		FROM Matchups
		ORDER BY week, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matchups []models.Matchup
	for rows.Next() {
		var m models.Matchup
		if err := rows.Scan(&m.Week, &m.HomeTeamID, &m.AwayTeamID, &m.Home, &m.Away); err != nil {
			return nil, err
		}
		matchups = append(matchups, m)
	}
	return matchups, rows.Err()
}

const playerColumns = `
	week, team_id, slot, player, team, position, opponent, game_status,
	player_rank, points, average_points, last_points, projected_points,
	actual_points, opponent_rank, percent_start, percent_own,
	percent_ownership_change`

// Players returns one team's roster for a week in page order.
func (s *Store) Players(ctx context.Context, teamID, week int) ([]models.PlayerScoreRecord, error) {
	return s.queryPlayers(ctx, `SELECT `+playerColumns+` FROM Players WHERE team_id = ? AND week = ? ORDER BY id`, teamID, week)
}

func (s *Store) PlayersByWeek(ctx context.Context, week int) ([]models.PlayerScoreRecord, error) {
	return s.queryPlayers(ctx, `SELECT `+playerColumns+` FROM Players WHERE week = ? ORDER BY id`, week)
}

func (s *Store) AllPlayers(ctx context.Context) ([]models.PlayerScoreRecord, error) {
	return s.queryPlayers(ctx, `SELECT `+playerColumns+` FROM Players ORDER BY id`)
}

func (s *Store) queryPlayers(ctx context.Context, query string, args ...any) ([]models.PlayerScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.PlayerScoreRecord
	for rows.Next() {
		var p models.PlayerScoreRecord
		var proTeam, position, opponent, status sql.NullString
		err := rows.Scan(&p.Week, &p.TeamID, &p.Slot, &p.Player, &proTeam, &position,
			&opponent, &status, &p.PlayerRank, &p.Points, &p.AveragePoints,
			&p.LastPoints, &p.ProjectedPoints, &p.ActualPoints, &p.OpponentRank,
			&p.PercentStart, &p.PercentOwn, &p.PercentChange)
		if err != nil {
			return nil, err
		}
		p.ProTeam, p.Position = proTeam.String, position.String
		p.Opponent, p.GameStatus = opponent.String, status.String
		players = append(players, p)
	}
	return players, rows.Err()
}
