package espn

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/omarshaarawi/ffstats/internal/models"
)

// Lineup table headers.
const (
	colSlot       = "SLOT"
	colPlayer     = "PLAYER, TEAM POS"
	colOpponent   = "OPP"
	colStatus     = "STATUS ET"
	colRank       = "PRK"
	colPoints     = "PTS"
	colAverage    = "AVG"
	colLast       = "LAST"
	colProjected  = "PROJ"
	colOppRank    = "OPRK"
	colPctStart   = "%ST"
	colPctOwn     = "%OWN"
	colPctChange  = "+/-"
	emptySlotSize = 11
	byeWeekSize   = 12
)

func (a *API) Lineup(ctx context.Context, teamID, week int) ([]models.PlayerScoreRecord, error) {
	doc, err := a.client.Get(ctx, pageClubhouse, map[string]string{
		"teamId":          strconv.Itoa(teamID),
		"scoringPeriodId": strconv.Itoa(week),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching lineup for team %d week %d: %w", teamID, week, err)
	}
	return ParseLineup(doc, teamID, week)
}

// BoxScore returns actual points for the team's starters then bench, in page order.
func (a *API) BoxScore(ctx context.Context, teamID, week int) ([]float64, error) {
	doc, err := a.client.Get(ctx, pageBoxScore, map[string]string{
		"teamId":          strconv.Itoa(teamID),
		"scoringPeriodId": strconv.Itoa(week),
		"view":            "scoringperiod",
		"version":         "quick",
	})
	if err != nil {
		return nil, fmt.Errorf("fetching box score for team %d week %d: %w", teamID, week, err)
	}
	return ParseBoxScore(doc)
}

// PlayerRecords joins the lineup with the box score by row position.
func (a *API) PlayerRecords(ctx context.Context, teamID, week int) ([]models.PlayerScoreRecord, error) {
	players, err := a.Lineup(ctx, teamID, week)
	if err != nil {
		return nil, err
	}
	scores, err := a.BoxScore(ctx, teamID, week)
	if err != nil {
		return nil, err
	}
	return JoinScores(players, scores)
}

func JoinScores(players []models.PlayerScoreRecord, scores []float64) ([]models.PlayerScoreRecord, error) {
	if len(players) != len(scores) {
		return nil, fmt.Errorf("lineup has %d players but box score has %d: %w", len(players), len(scores), ErrLayout)
	}
	for i := range players {
		players[i].ActualPoints = scores[i]
	}
	return players, nil
}

func ParseLineup(doc *goquery.Document, teamID, week int) ([]models.PlayerScoreRecord, error) {
	rows := doc.Find("table.playerTableTable").First().Find("tr")
	if rows.Length() < 2 {
		return nil, fmt.Errorf("lineup: no player table: %w", ErrLayout)
	}

	headers := cellTexts(rows.Eq(1))
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var players []models.PlayerScoreRecord
	var err error
	rows.Slice(2, rows.Length()).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if !row.HasClass("pncPlayerRow") {
			return true
		}
		var p models.PlayerScoreRecord
		p, err = parsePlayerRow(headers, cellTexts(row), teamID, week, len(players)+1)
		if err != nil {
			return false
		}
		players = append(players, p)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("lineup team %d week %d: %w", teamID, week, err)
	}
	return players, nil
}

func parsePlayerRow(headers, fields []string, teamID, week, num int) (models.PlayerScoreRecord, error) {
	// Empty slots have no OPP or STATUS cells; bye weeks have no STATUS cell.
	switch len(fields) {
	case emptySlotSize:
		fields = insertBlank(fields, 2)
		fields = insertBlank(fields, 3)
	case byeWeekSize:
		fields = insertBlank(fields, 3)
	}

	p := models.PlayerScoreRecord{Week: week, TeamID: teamID}
	var err error
	for i, header := range headers {
		if i >= len(fields) {
			break
		}
		value := strings.TrimSpace(fields[i])

		switch header {
		case colSlot:
			p.Slot = value
		case colPlayer:
			parsePlayerCell(&p, value, num)
		case colOpponent:
			p.Opponent = value
		case colStatus:
			p.GameStatus = value
		case colRank:
			p.PlayerRank, err = parseInt(value)
		case colPoints:
			p.Points, err = parseFloat(value)
		case colAverage:
			p.AveragePoints, err = parseFloat(value)
		case colLast:
			p.LastPoints, err = parseFloat(value)
		case colProjected:
			p.ProjectedPoints, err = parseFloat(value)
		case colOppRank:
			p.OpponentRank, err = parseInt(stripOrdinal(value))
		case colPctStart:
			p.PercentStart, err = parseFloat(value)
		case colPctOwn:
			p.PercentOwn, err = parseFloat(value)
		case colPctChange:
			p.PercentChange, err = parseFloat(value)
		}
		if err != nil {
			return models.PlayerScoreRecord{}, fmt.Errorf("row %d %s: %w", num, header, err)
		}
	}
	return p, nil
}

// parsePlayerCell splits "Name*, TEAM POS". D/ST cells have no comma and read
// "Bears D/ST D/ST".
func parsePlayerCell(p *models.PlayerScoreRecord, value string, num int) {
	if value == "" {
		p.Player = fmt.Sprintf("EMPTY-%d", num)
		return
	}

	name, teamPos, ok := strings.Cut(value, ",")
	if !ok {
		words := strings.Fields(value)
		p.Player = strings.Join(words[:min(2, len(words))], " ")
		p.Position = words[len(words)-1]
		return
	}

	p.Player = strings.TrimSuffix(strings.TrimSpace(name), "*")
	parts := strings.Fields(teamPos)
	if len(parts) > 0 {
		p.ProTeam = parts[0]
	}
	if len(parts) > 1 {
		p.Position = parts[1]
	}
}

// ParseBoxScore reads the last cell of every player row in the first two
// player tables: starters, then bench.
func ParseBoxScore(doc *goquery.Document) ([]float64, error) {
	tables := doc.Find("table.playerTableTable")
	if tables.Length() < 2 {
		return nil, fmt.Errorf("box score: %d player tables: %w", tables.Length(), ErrLayout)
	}

	var scores []float64
	for i, skip := range []int{3, 2} {
		rows := tables.Eq(i).Find("tr")
		if rows.Length() <= skip {
			continue
		}
		var err error
		rows.Slice(skip, rows.Length()).EachWithBreak(func(_ int, row *goquery.Selection) bool {
			if !row.HasClass("pncPlayerRow") {
				return true
			}
			fields := cellTexts(row)
			if len(fields) == 0 {
				err = fmt.Errorf("box score: empty player row: %w", ErrLayout)
				return false
			}
			var score float64
			score, err = parseFloat(strings.TrimSpace(fields[len(fields)-1]))
			if err != nil {
				return false
			}
			scores = append(scores, score)
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return scores, nil
}

func insertBlank(fields []string, at int) []string {
	if at > len(fields) {
		at = len(fields)
	}
	fields = append(fields, "")
	copy(fields[at+1:], fields[at:])
	fields[at] = ""
	return fields
}

// "--" marks no value.
func parseFloat(value string) (float64, error) {
	if value == "" || value == "--" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}

func parseInt(value string) (int, error) {
	if value == "" || value == "--" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

// stripOrdinal turns "3rd" into "3".
func stripOrdinal(value string) string {
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if strings.HasSuffix(value, suffix) {
			return strings.TrimSuffix(value, suffix)
		}
	}
	return value
}
