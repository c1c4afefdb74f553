package analysis

import (
	"context"
	"fmt"
	"math"
)

type Point struct {
	TeamID int
	Week   int
	X      float64
	Y      float64
}

// Series is the data behind one scatter plot with a unity line from 0 to Limit.
type Series struct {
	Name   string
	Title  string
	XLabel string
	YLabel string
	Points []Point
	Limit  float64
}

// AccuracySeries plots actual (x) against projected (y) starter scores.
func (e *Engine) AccuracySeries(ctx context.Context, teamIDs, weeks []int) (Series, error) {
	s := Series{
		Name:   "proj_accuracy",
		Title:  "ESPN projection accuracy: " + WeekLabel(weeks),
		XLabel: "Actual score",
		YLabel: "ESPN projected score",
	}
	return e.fillSeries(ctx, s, teamIDs, weeks, func(ts TeamScores) (float64, float64) {
		return Round1(ts.Actual), Round1(ts.Projected)
	})
}

// EfficiencySeries plots actual (x) against best possible (y) scores; points far
// above the unity line are points left on the bench.
func (e *Engine) EfficiencySeries(ctx context.Context, teamIDs, weeks []int) (Series, error) {
	s := Series{
		Name:   "manager_efficiency",
		Title:  "Manager efficiency: " + WeekLabel(weeks),
		XLabel: "Actual score",
		YLabel: "Best possible score",
	}
	return e.fillSeries(ctx, s, teamIDs, weeks, func(ts TeamScores) (float64, float64) {
		return Round1(ts.Actual), Round1(ts.Best)
	})
}

func (e *Engine) fillSeries(ctx context.Context, s Series, teamIDs, weeks []int, xy func(TeamScores) (float64, float64)) (Series, error) {
	score := e.memoScores()
	var values []float64
	for _, team := range teamIDs {
		for _, week := range weeks {
			ts, err := score(ctx, team, week)
			if err != nil {
				return Series{}, fmt.Errorf("%s: %w", s.Name, err)
			}
			x, y := xy(ts)
			s.Points = append(s.Points, Point{TeamID: team, Week: week, X: x, Y: y})
			values = append(values, x, y)
		}
	}
	s.Limit = AxisLimit(values...)
	return s, nil
}

// AxisLimit rounds the largest value up to the next multiple of 50.
func AxisLimit(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}
	high := values[0]
	for _, v := range values[1:] {
		high = max(high, v)
	}
	return math.Ceil(high/50) * 50
}

// WeekLabel renders "Week 3" for one week and "Weeks 1-3" for a window.
func WeekLabel(weeks []int) string {
	switch len(weeks) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("Week %d", weeks[0])
	}
	return fmt.Sprintf("Weeks %d-%d", weeks[0], weeks[len(weeks)-1])
}
