package models

import "github.com/shopspring/decimal"

const (
	SlotBench = "Bench"

	PositionQB   = "QB"
	PositionRB   = "RB"
	PositionWR   = "WR"
	PositionTE   = "TE"
	PositionFLEX = "FLEX"
	PositionDST  = "D/ST"
	PositionK    = "K"
)

type Team struct {
	TeamID   int
	Abbr     string
	Name     string
	Division string
	Owner    string
	CoOwner  string
}

// PlayerScoreRecord is one roster row for a team in a week, starters and bench alike.
type PlayerScoreRecord struct {
	Week            int
	TeamID          int
	Slot            string
	Player          string
	ProTeam         string
	Position        string
	Opponent        string
	GameStatus      string
	PlayerRank      int
	Points          float64
	AveragePoints   float64
	LastPoints      float64
	ProjectedPoints float64
	ActualPoints    float64
	OpponentRank    int
	PercentStart    float64
	PercentOwn      float64
	PercentChange   float64
}

func (p PlayerScoreRecord) IsStarter() bool {
	return p.Slot != SlotBench
}

type Matchup struct {
	Week       int
	HomeTeamID int
	AwayTeamID int
	Home       string
	Away       string
}

// SlotCount is a raw row of the league roster settings.
type SlotCount struct {
	Position string
	Slots    int
}

type StandingsRow struct {
	Team          Team
	Wins          int
	Losses        int
	Ties          int
	WinPct        float64
	PointsFor     decimal.Decimal
	PointsAgainst decimal.Decimal
}

func (r StandingsRow) Played() int {
	return r.Wins + r.Losses + r.Ties
}

type BootstrapResult struct {
	Distribution []float64
	Mean         float64
	CILow        float64
	CIHigh       float64
	Alpha        float64
	NumSamples   int
}
