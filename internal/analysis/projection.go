package analysis

import (
	"sort"

	"github.com/omarshaarawi/ffstats/internal/models"
)

// ErrorFilter narrows the records projection errors are computed over. An empty
// Position keeps every position; a non-empty ExcludeSlot drops records in that
// slot, so ExcludeSlot "Bench" keeps starters only.
type ErrorFilter struct {
	Position    string
	ExcludeSlot string
}

// RelativeErrors returns (projected - actual) / projected for every record with
// a non-zero projection. Zero projections are bye weeks and injured players.
func RelativeErrors(players []models.PlayerScoreRecord, f ErrorFilter) []float64 {
	var errs []float64
	for _, p := range players {
		if p.ProjectedPoints == 0 {
			continue
		}
		if f.Position != "" && slotKey(p.Position) != slotKey(f.Position) {
			continue
		}
		if f.ExcludeSlot != "" && p.Slot == f.ExcludeSlot {
			continue
		}
		errs = append(errs, (p.ProjectedPoints-p.ActualPoints)/p.ProjectedPoints)
	}
	return errs
}

type PlayerError struct {
	Week      int
	TeamID    int
	Player    string
	Position  string
	Slot      string
	Started   bool
	Projected float64
	Actual    float64
	Absolute  float64
	Relative  float64
}

// PlayerErrors lists per-player projection misses for records projected above
// zero, largest overestimate first.
func PlayerErrors(players []models.PlayerScoreRecord) []PlayerError {
	var rows []PlayerError
	for _, p := range players {
		if p.ProjectedPoints <= 0 {
			continue
		}
		diff := p.ProjectedPoints - p.ActualPoints
		rows = append(rows, PlayerError{
			Week:      p.Week,
			TeamID:    p.TeamID,
			Player:    p.Player,
			Position:  p.Position,
			Slot:      p.Slot,
			Started:   p.IsStarter(),
			Projected: p.ProjectedPoints,
			Actual:    p.ActualPoints,
			Absolute:  diff,
			Relative:  diff / p.ProjectedPoints,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Absolute > rows[j].Absolute
	})
	return rows
}

// ByRelativeError returns a copy of rows ordered by relative error, largest
// first.
func ByRelativeError(rows []PlayerError) []PlayerError {
	sorted := append([]PlayerError(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Relative > sorted[j].Relative
	})
	return sorted
}
