package analysis

import (
	"errors"
	"testing"

	"github.com/omarshaarawi/ffstats/internal/models"
)

func standardCounts() []models.SlotCount {
	return []models.SlotCount{
		{Position: "QB", Slots: 1},
		{Position: "RB", Slots: 2},
		{Position: "WR", Slots: 2},
		{Position: "TE", Slots: 1},
		{Position: "FLEX", Slots: 1},
		{Position: "D/ST", Slots: 1},
		{Position: "K", Slots: 1},
	}
}

func TestNewSlotRules(t *testing.T) {
	rules, err := NewSlotRules(standardCounts())
	if err != nil {
		t.Fatalf("NewSlotRules: %v", err)
	}
	if rules != standardRules() {
		t.Errorf("rules = %+v, want %+v", rules, standardRules())
	}
	if rules.Cap("D/ST") != 1 || rules.Cap("DST") != 1 {
		t.Errorf("Cap(D/ST) = %d, Cap(DST) = %d, want 1", rules.Cap("D/ST"), rules.Cap("DST"))
	}
}

func TestNewSlotRules_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name     string
		counts   []models.SlotCount
		position string
	}{
		{"missing", standardCounts()[:6], "K"},
		{"unknown", append(standardCounts(), models.SlotCount{Position: "IDP", Slots: 1}), "IDP"},
		{"negative", append(standardCounts()[1:], models.SlotCount{Position: "QB", Slots: -1}), "QB"},
		{"conflict", append(standardCounts(), models.SlotCount{Position: "RB", Slots: 3}), "RB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSlotRules(tt.counts)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err = %v, want *ConfigurationError", err)
			}
			if cfgErr.Position != tt.position {
				t.Errorf("Position = %q, want %q", cfgErr.Position, tt.position)
			}
		})
	}
}
