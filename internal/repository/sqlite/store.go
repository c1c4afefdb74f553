package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/omarshaarawi/ffstats/internal/models"
)

// Store keeps a scraped league in a SQLite file, one table per page type.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initDatabase(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initDatabase() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS Teams (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT UNIQUE,
			team_id INTEGER UNIQUE,
			team_abbr TEXT,
			team_name TEXT,
			division TEXT,
			owner TEXT,
			co_owner TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS Slots (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT UNIQUE,
			position TEXT UNIQUE,
			slots INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS Matchups (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT UNIQUE,
			week INTEGER,
			home_id INTEGER,
			away_id INTEGER,
			home TEXT,
			away TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS Players (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT UNIQUE,
			week INTEGER,
			team_id INTEGER,
			slot TEXT,
			player TEXT,
			team TEXT,
			position TEXT,
			opponent TEXT,
			game_status TEXT,
			player_rank INTEGER,
			points DECIMAL(5,1),
			average_points DECIMAL(5,1),
			last_points DECIMAL(5,1),
			projected_points DECIMAL(5,1),
			actual_points DECIMAL(5,1),
			opponent_rank INTEGER,
			percent_start DECIMAL(5,1),
			percent_own DECIMAL(5,1),
			percent_ownership_change DECIMAL(5,1),
			UNIQUE (week, team_id, slot, player)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matchups_week ON Matchups (week)`,
		`CREATE INDEX IF NOT EXISTS idx_players_team_week ON Players (team_id, week)`,
		`CREATE INDEX IF NOT EXISTS idx_players_week ON Players (week)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

func (s *Store) SaveTeam(ctx context.Context, t models.Team) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO Teams
		(team_id, team_abbr, team_name, division, owner, co_owner)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.TeamID, t.Abbr, t.Name, t.Division, t.Owner, nullString(t.CoOwner))
	return err
}

func (s *Store) SaveSlots(ctx context.Context, slots []models.SlotCount) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, slot := range slots {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO Slots (position, slots) VALUES (?, ?)`,
				slot.Position, slot.Slots); err != nil {
				return fmt.Errorf("slot %s: %w", slot.Position, err)
			}
		}
		return nil
	})
}

// ReplaceMatchups drops every stored matchup before writing the new schedule.
func (s *Store) ReplaceMatchups(ctx context.Context, matchups []models.Matchup) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM Matchups`); err != nil {
			return err
		}
		for _, m := range matchups {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO Matchups (week, home_id, away_id, home, away)
				VALUES (?, ?, ?, ?, ?)`,
				m.Week, m.HomeTeamID, m.AwayTeamID, m.Home, m.Away); err != nil {
				return fmt.Errorf("week %d matchup: %w", m.Week, err)
			}
		}
		return nil
	})
}

// SavePlayers replaces the stored roster of every (week, team) present in
// players, so a re-scrape picks up final points and slot moves.
func (s *Store) SavePlayers(ctx context.Context, players []models.PlayerScoreRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		cleared := make(map[[2]int]bool)
		for _, p := range players {
			key := [2]int{p.Week, p.TeamID}
			if cleared[key] {
				continue
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM Players WHERE week = ? AND team_id = ?`, p.Week, p.TeamID); err != nil {
				return fmt.Errorf("clearing team %d week %d: %w", p.TeamID, p.Week, err)
			}
			cleared[key] = true
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO Players
			(week, team_id, slot, player, team, position, opponent, game_status,
			 player_rank, points, average_points, last_points, projected_points,
			 actual_points, opponent_rank, percent_start, percent_own,
			 percent_ownership_change)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range players {
			if _, err := stmt.ExecContext(ctx,
				p.Week, p.TeamID, p.Slot, p.Player, nullString(p.ProTeam), nullString(p.Position),
				nullString(p.Opponent), nullString(p.GameStatus), p.PlayerRank, p.Points,
				p.AveragePoints, p.LastPoints, p.ProjectedPoints, p.ActualPoints,
				p.OpponentRank, p.PercentStart, p.PercentOwn, p.PercentChange); err != nil {
				return fmt.Errorf("player %s: %w", p.Player, err)
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
