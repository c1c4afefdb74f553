package analysis

import (
	"fmt"
	"strings"

	"github.com/omarshaarawi/ffstats/internal/models"
)

var slotKeys = []string{"QB", "RB", "WR", "TE", "FLEX", "DST", "K"}

// SlotRules holds the number of startable slots per position. FLEX is the pool
// shared by RB, WR and TE players left over after their own position caps.
type SlotRules struct {
	QB   int
	RB   int
	WR   int
	TE   int
	FLEX int
	DST  int
	K    int
}

// NewSlotRules validates raw roster settings rows. Every key in
// {QB, RB, WR, TE, FLEX, DST, K} must be present exactly once with a
// non-negative count; "D/ST" is accepted for DST.
func NewSlotRules(counts []models.SlotCount) (SlotRules, error) {
	seen := make(map[string]int, len(counts))
	for _, c := range counts {
		key := slotKey(c.Position)
		if !isSlotKey(key) {
			return SlotRules{}, &ConfigurationError{Position: c.Position, Reason: "is not a lineup position"}
		}
		if c.Slots < 0 {
			return SlotRules{}, &ConfigurationError{Position: key, Reason: fmt.Sprintf("has negative slot count %d", c.Slots)}
		}
		if prev, ok := seen[key]; ok && prev != c.Slots {
			return SlotRules{}, &ConfigurationError{Position: key, Reason: fmt.Sprintf("has conflicting slot counts %d and %d", prev, c.Slots)}
		}
		seen[key] = c.Slots
	}

	for _, key := range slotKeys {
		if _, ok := seen[key]; !ok {
			return SlotRules{}, &ConfigurationError{Position: key, Reason: "is missing"}
		}
	}

	return SlotRules{
		QB:   seen["QB"],
		RB:   seen["RB"],
		WR:   seen["WR"],
		TE:   seen["TE"],
		FLEX: seen["FLEX"],
		DST:  seen["DST"],
		K:    seen["K"],
	}, nil
}

// Cap returns the slot count for a player position label or rule key.
func (r SlotRules) Cap(position string) int {
	switch slotKey(position) {
	case "QB":
		return r.QB
	case "RB":
		return r.RB
	case "WR":
		return r.WR
	case "TE":
		return r.TE
	case "FLEX":
		return r.FLEX
	case "DST":
		return r.DST
	case "K":
		return r.K
	}
	return 0
}

func (r SlotRules) Counts() []models.SlotCount {
	counts := make([]models.SlotCount, 0, len(slotKeys))
	for _, key := range slotKeys {
		counts = append(counts, models.SlotCount{Position: key, Slots: r.Cap(key)})
	}
	return counts
}

func slotKey(position string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(position), "/", ""))
}

func isSlotKey(key string) bool {
	for _, k := range slotKeys {
		if k == key {
			return true
		}
	}
	return false
}
