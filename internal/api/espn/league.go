package espn

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/omarshaarawi/ffstats/internal/models"
)

const (
	pageSettings  = "leaguesetup/settings"
	pageSchedule  = "schedule"
	pageClubhouse = "clubhouse"
	pageBoxScore  = "boxscorequick"
)

// ErrLayout is returned when a page does not have the tables or rows expected.
var ErrLayout = errors.New("unexpected page layout")

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) NumTeams(ctx context.Context) (int, error) {
	doc, err := a.client.Get(ctx, pageSettings, nil)
	if err != nil {
		return 0, fmt.Errorf("fetching league settings: %w", err)
	}
	return ParseNumTeams(doc)
}

func (a *API) SlotCounts(ctx context.Context) ([]models.SlotCount, error) {
	doc, err := a.client.Get(ctx, pageSettings, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching league settings: %w", err)
	}
	return ParseSlotCounts(doc)
}

// Schedule returns the regular season matchups by team name; IDs are resolved
// by the caller.
func (a *API) Schedule(ctx context.Context, matchupsPerWeek int) ([]models.Matchup, error) {
	doc, err := a.client.Get(ctx, pageSchedule, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}
	return ParseSchedule(doc, matchupsPerWeek)
}

func (a *API) Team(ctx context.Context, teamID int) (models.Team, error) {
	doc, err := a.client.Get(ctx, pageClubhouse, map[string]string{
		"teamId": strconv.Itoa(teamID),
	})
	if err != nil {
		return models.Team{}, fmt.Errorf("fetching clubhouse for team %d: %w", teamID, err)
	}
	return ParseTeam(doc, teamID)
}

func ParseNumTeams(doc *goquery.Document) (int, error) {
	table := doc.Find("table").Eq(1)
	if table.Length() == 0 {
		return 0, fmt.Errorf("settings: no league table: %w", ErrLayout)
	}

	n := 0
	var err error
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		fields := cellTexts(row)
		if len(fields) < 2 || strings.TrimSpace(fields[0]) != "Number of Teams" {
			return true
		}
		n, err = strconv.Atoi(strings.TrimSpace(fields[1]))
		return false
	})
	if err != nil {
		return 0, fmt.Errorf("settings: number of teams: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("settings: number of teams not found: %w", ErrLayout)
	}
	return n, nil
}

// ParseSlotCounts reads the seven starter rows of the roster settings table.
// "Flex (RB/WR/TE)" maps to FLEX; other rows use their abbreviation with "/"
// removed, so "Team Defense/Special Teams (D/ST)" maps to DST.
func ParseSlotCounts(doc *goquery.Document) ([]models.SlotCount, error) {
	rows := doc.Find("table").Eq(2).Find("tr")
	if rows.Length() < 10 {
		return nil, fmt.Errorf("settings: roster table has %d rows: %w", rows.Length(), ErrLayout)
	}

	var counts []models.SlotCount
	for i := 3; i < 10; i++ {
		fields := cellTexts(rows.Eq(i))
		if len(fields) < 2 {
			return nil, fmt.Errorf("settings: roster row %d: %w", i, ErrLayout)
		}

		label := fields[0]
		name, rest, _ := strings.Cut(label, "(")
		position := "FLEX"
		if strings.TrimSpace(name) != "Flex" {
			abbr, _, ok := strings.Cut(rest, ")")
			if !ok {
				return nil, fmt.Errorf("settings: roster label %q: %w", label, ErrLayout)
			}
			position = strings.ReplaceAll(abbr, "/", "")
		}

		slots, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("settings: %s slots: %w", position, err)
		}
		counts = append(counts, models.SlotCount{Position: position, Slots: slots})
	}
	return counts, nil
}

// ParseSchedule reads the home and away team names from the title attributes of
// each matchup row. The week advances every matchupsPerWeek matchups.
func ParseSchedule(doc *goquery.Document, matchupsPerWeek int) ([]models.Matchup, error) {
	if matchupsPerWeek < 1 {
		return nil, fmt.Errorf("schedule: %d matchups per week", matchupsPerWeek)
	}
	rows := doc.Find("table").Eq(1).Find("tr")
	if rows.Length() < 2 {
		return nil, fmt.Errorf("schedule: no matchup table: %w", ErrLayout)
	}

	var matchups []models.Matchup
	week := 1
	rows.Slice(2, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		var titles []string
		row.Find("*").Each(func(_ int, s *goquery.Selection) {
			if title, ok := s.Attr("title"); ok {
				titles = append(titles, title)
			}
		})
		if len(titles) < 2 {
			return
		}

		matchups = append(matchups, models.Matchup{
			Week: week,
			Home: teamName(titles[0]),
			Away: teamName(titles[1]),
		})
		if len(matchups)%matchupsPerWeek == 0 {
			week++
		}
	})
	return matchups, nil
}

func ParseTeam(doc *goquery.Document, teamID int) (models.Team, error) {
	heading := doc.Find("h3.team-name").First().Text()
	name, abbr, ok := strings.Cut(heading, "(")
	if !ok {
		return models.Team{}, fmt.Errorf("clubhouse: team heading %q: %w", heading, ErrLayout)
	}

	team := models.Team{
		TeamID:   teamID,
		Abbr:     strings.TrimSpace(strings.ReplaceAll(abbr, ")", "")),
		Name:     strings.TrimSpace(name),
		Division: strings.TrimSpace(doc.Find("div.games-univ-mod1").First().Text()),
	}

	managers := doc.Find("li.per-info")
	if managers.Length() == 0 {
		return models.Team{}, fmt.Errorf("clubhouse: no owner listed: %w", ErrLayout)
	}
	team.Owner = strings.TrimSpace(managers.Eq(0).Text())
	if managers.Length() > 1 {
		if _, coOwner, ok := strings.Cut(managers.Eq(1).Text(), "|"); ok {
			team.CoOwner = strings.TrimSpace(coOwner)
		}
	}
	return team, nil
}

// teamName drops the owner suffix from "Team Name (Owner Name)".
func teamName(title string) string {
	name, _, _ := strings.Cut(title, "(")
	return strings.TrimSpace(name)
}

// cellTexts returns the text of every child cell that has any, with
// non-breaking spaces turned into plain spaces.
func cellTexts(row *goquery.Selection) []string {
	var fields []string
	row.Children().Each(func(_ int, cell *goquery.Selection) {
		text := strings.ReplaceAll(cell.Text(), "\u00a0", " ")
		if len(text) > 0 {
			fields = append(fields, text)
		}
	})
	return fields
}
