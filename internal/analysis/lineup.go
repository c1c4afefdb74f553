package analysis

import (
	"sort"

	"github.com/omarshaarawi/ffstats/internal/models"
	"github.com/shopspring/decimal"
)

// lineupPositions is the display order of a lineup; FLEX is filled after the
// RB/WR/TE caps are applied.
var lineupPositions = []string{
	models.PositionQB,
	models.PositionRB,
	models.PositionWR,
	models.PositionTE,
	models.PositionFLEX,
	models.PositionDST,
	models.PositionK,
}

var flexEligible = map[string]bool{
	models.PositionRB: true,
	models.PositionWR: true,
	models.PositionTE: true,
}

type LineupSlot struct {
	Slot   string
	Player models.PlayerScoreRecord
}

// BestLineup picks the highest actual scorers for every position cap, then fills
// FLEX from the RB/WR/TE players not already selected. The input is not modified.
func BestLineup(players []models.PlayerScoreRecord, rules SlotRules) []LineupSlot {
	groups := make(map[string][]models.PlayerScoreRecord)
	for _, p := range players {
		pos := positionLabel(p.Position)
		if pos == "" || pos == models.PositionFLEX {
			continue
		}
		groups[pos] = append(groups[pos], p)
	}

	selected := make(map[string][]models.PlayerScoreRecord, len(lineupPositions))
	var flexPool []models.PlayerScoreRecord
	for _, pos := range lineupPositions {
		if pos == models.PositionFLEX {
			continue
		}
		group := groups[pos]
		sortByActual(group)
		n := min(rules.Cap(pos), len(group))
		selected[pos] = group[:n]
		if flexEligible[pos] {
			flexPool = append(flexPool, group[n:]...)
		}
	}
	sortByActual(flexPool)
	selected[models.PositionFLEX] = flexPool[:min(rules.FLEX, len(flexPool))]

	var lineup []LineupSlot
	for _, pos := range lineupPositions {
		for _, p := range selected[pos] {
			lineup = append(lineup, LineupSlot{Slot: pos, Player: p})
		}
	}
	return lineup
}

// BestLineupScore is the exact sum of actual points of BestLineup.
func BestLineupScore(players []models.PlayerScoreRecord, rules SlotRules) decimal.Decimal {
	total := decimal.Zero
	for _, s := range BestLineup(players, rules) {
		total = total.Add(decimal.NewFromFloat(s.Player.ActualPoints))
	}
	return total
}

func sortByActual(group []models.PlayerScoreRecord) {
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].ActualPoints > group[j].ActualPoints
	})
}

// positionLabel maps rule keys and player labels onto the player labels used on
// ESPN pages; unknown positions (empty slots) map to "".
func positionLabel(position string) string {
	switch slotKey(position) {
	case "QB":
		return models.PositionQB
	case "RB":
		return models.PositionRB
	case "WR":
		return models.PositionWR
	case "TE":
		return models.PositionTE
	case "FLEX":
		return models.PositionFLEX
	case "DST":
		return models.PositionDST
	case "K":
		return models.PositionK
	}
	return ""
}
