package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/omarshaarawi/ffstats/internal/analysis"
	"github.com/omarshaarawi/ffstats/internal/models"
)

var standingsHeader = []string{
	"team_id", "team_abbr", "team_name", "division", "owner", "co_owner",
	"W", "L", "T", "PCT", "PF", "PA",
}

// WriteStandingsCSV writes one row per team. PCT is blank for teams with no
// games in the window.
func WriteStandingsCSV(w io.Writer, rows []models.StandingsRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(standingsHeader); err != nil {
		return err
	}
	for _, r := range rows {
		pct := ""
		if r.Played() > 0 {
			pct = strconv.FormatFloat(r.WinPct, 'f', 2, 64)
		}
		err := cw.Write([]string{
			strconv.Itoa(r.Team.TeamID), r.Team.Abbr, r.Team.Name, r.Team.Division,
			r.Team.Owner, r.Team.CoOwner,
			strconv.Itoa(r.Wins), strconv.Itoa(r.Losses), strconv.Itoa(r.Ties),
			pct, r.PointsFor.StringFixed(1), r.PointsAgainst.StringFixed(1),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSeriesCSV writes the points of a scatter plot; the axis columns are
// named after the axis labels.
func WriteSeriesCSV(w io.Writer, s analysis.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"team_id", "week", columnName(s.XLabel), columnName(s.YLabel)}); err != nil {
		return err
	}
	for _, p := range s.Points {
		err := cw.Write([]string{
			strconv.Itoa(p.TeamID), strconv.Itoa(p.Week), formatF(p.X), formatF(p.Y),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBootstrapCSV writes the summary as "#"-prefixed rows followed by the
// sorted distribution.
func WriteBootstrapCSV(w io.Writer, res models.BootstrapResult) error {
	cw := csv.NewWriter(w)
	summary := [][]string{
		{"# samples", strconv.Itoa(res.NumSamples)},
		{"# alpha", formatF(res.Alpha)},
		{"# mean", formatF(res.Mean)},
		{"# ci_low", formatF(res.CILow)},
		{"# ci_high", formatF(res.CIHigh)},
		{"sample", "statistic"},
	}
	if err := cw.WriteAll(summary); err != nil {
		return err
	}
	for i, v := range res.Distribution {
		if err := cw.Write([]string{strconv.Itoa(i), formatF(v)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WritePlayerErrorsCSV(w io.Writer, rows []analysis.PlayerError) error {
	cw := csv.NewWriter(w)
	err := cw.Write([]string{
		"week", "team_id", "player", "position", "slot", "started",
		"projected", "actual", "error", "relative_error",
	})
	if err != nil {
		return err
	}
	for _, r := range rows {
		err := cw.Write([]string{
			strconv.Itoa(r.Week), strconv.Itoa(r.TeamID), r.Player, r.Position, r.Slot,
			strconv.FormatBool(r.Started), formatF(r.Projected), formatF(r.Actual),
			formatF(r.Absolute), strconv.FormatFloat(r.Relative, 'f', 4, 64),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// StandingsFileName is e.g. proj_standings_week_3.csv or
// actual_standings_weeks_1-3.csv.
func StandingsFileName(p analysis.Policy, weeks []int) string {
	prefix := p.Name
	if p.Name == analysis.Projected.Name {
		prefix = "proj"
	}
	return fmt.Sprintf("%s_standings_%s.csv", prefix, weeksSuffix(weeks))
}

func weeksSuffix(weeks []int) string {
	return strings.ReplaceAll(strings.ToLower(analysis.WeekLabel(weeks)), " ", "_")
}

// columnName turns "ESPN projected score" into "espn_projected_score".
func columnName(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), "_")
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
