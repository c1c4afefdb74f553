package analysis

import (
	"github.com/omarshaarawi/ffstats/internal/models"
	"github.com/shopspring/decimal"
)

// TeamScores are exact sums. Comparisons use them as is; Rounded is for display.
type TeamScores struct {
	Projected decimal.Decimal
	Actual    decimal.Decimal
	Best      decimal.Decimal
}

func (s TeamScores) Rounded() TeamScores {
	return TeamScores{
		Projected: s.Projected.Round(1),
		Actual:    s.Actual.Round(1),
		Best:      s.Best.Round(1),
	}
}

// TeamWeekScores sums projected and actual points of the starters and computes
// the best possible score over the whole roster, bench included.
func TeamWeekScores(players []models.PlayerScoreRecord, rules SlotRules) TeamScores {
	projected, actual := decimal.Zero, decimal.Zero
	for _, p := range players {
		if !p.IsStarter() {
			continue
		}
		projected = projected.Add(decimal.NewFromFloat(p.ProjectedPoints))
		actual = actual.Add(decimal.NewFromFloat(p.ActualPoints))
	}

	return TeamScores{
		Projected: projected,
		Actual:    actual,
		Best:      BestLineupScore(players, rules),
	}
}

func Round1(d decimal.Decimal) float64 {
	return d.Round(1).InexactFloat64()
}
