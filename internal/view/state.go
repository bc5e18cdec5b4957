// Package view holds the day view model: the selected date, the signed-in
// user's activities for it, and the derived stats and analysis.
package view

import (
	"daylog/internal/core"
	"daylog/internal/session"
)

// State is an immutable snapshot of the day view. A new State is built for
// every change; callers never share mutable data with the controller.
type State struct {
	Identity   session.Identity
	SignedIn   bool
	Date       core.Day
	Activities []core.Activity
	Summary    core.DaySummary
	// Analysis is nil while the dashboard is closed.
	Analysis *core.Analysis
	// Validation is the inline message next to the add form.
	Validation string
	// Notice reports a failed store or auth action.
	Notice     string
	Generation uint64
}

// Empty reports whether the selected day has no activities.
func (s State) Empty() bool {
	return len(s.Activities) == 0
}

func (s State) clone() State {
	out := s
	out.Activities = append([]core.Activity(nil), s.Activities...)
	if s.Analysis != nil {
		a := *s.Analysis
		a.Pie = append([]core.ChartPoint(nil), a.Pie...)
		a.Bar = append([]core.ChartPoint(nil), a.Bar...)
		a.Timeline = append([]string(nil), a.Timeline...)
		a.Shares = append([]core.CategoryShare(nil), a.Shares...)
		out.Analysis = &a
	}
	return out
}

// ChartSeries is the charting input for the open dashboard.
type ChartSeries struct {
	Pie []core.ChartPoint `json:"pie"`
	Bar []core.ChartPoint `json:"bar"`
}

// Charts returns the chart series of the open dashboard, or false if it is
// closed.
func (s State) Charts() (ChartSeries, bool) {
	if s.Analysis == nil {
		return ChartSeries{}, false
	}
	return ChartSeries{
		Pie: append([]core.ChartPoint(nil), s.Analysis.Pie...),
		Bar: append([]core.ChartPoint(nil), s.Analysis.Bar...),
	}, true
}
