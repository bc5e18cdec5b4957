package core

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type (
	// CategoryMinutes is the summed duration of one category.
	CategoryMinutes struct {
		Name    string
		Minutes int
	}

	// CategoryShare is a category's percentage of the day's total.
	CategoryShare struct {
		Name    string
		Minutes int
		Percent decimal.Decimal
	}

	// ChartPoint is the only shape handed to the charting library.
	ChartPoint struct {
		Label string `json:"label"`
		Value int    `json:"value"`
	}

	// Analysis is the dashboard content for one day.
	Analysis struct {
		Total              int
		Count              int
		DistinctCategories int
		Pie                []ChartPoint
		Bar                []ChartPoint
		Timeline           []string
		Shares             []CategoryShare
	}
)

// CategoryTotals groups records by category, in order of first appearance.
func CategoryTotals(records []Activity) []CategoryMinutes {
	index := make(map[string]int)
	var totals []CategoryMinutes
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			index[r.Category] = len(totals)
			totals = append(totals, CategoryMinutes{Name: r.Category, Minutes: r.Minutes})
			continue
		}
		totals[i].Minutes += r.Minutes
	}
	return totals
}

// DistinctCategoryCount counts unique categories.
func DistinctCategoryCount(records []Activity) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.Category] = struct{}{}
	}
	return len(seen)
}

// SortedByDurationDescending returns a copy of records ordered by minutes,
// longest first. Ties keep their original relative order.
func SortedByDurationDescending(records []Activity) []Activity {
	sorted := make([]Activity, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Minutes > sorted[j].Minutes
	})
	return sorted
}

// TimelineLines renders one line per activity in duration order.
func TimelineLines(records []Activity) []string {
	sorted := SortedByDurationDescending(records)
	lines := make([]string, 0, len(sorted))
	for _, r := range sorted {
		lines = append(lines, fmt.Sprintf("%s — %d min", r.Title, r.Minutes))
	}
	return lines
}

// CategoryShares expresses each category total as a percentage of the day,
// rounded to one decimal place.
func CategoryShares(records []Activity) []CategoryShare {
	total := TotalMinutes(records)
	totals := CategoryTotals(records)
	shares := make([]CategoryShare, 0, len(totals))
	for _, ct := range totals {
		pct := decimal.Zero
		if total > 0 {
			pct = decimal.NewFromInt(int64(ct.Minutes)).
				Mul(decimal.NewFromInt(100)).
				Div(decimal.NewFromInt(int64(total))).
				Round(1)
		}
		shares = append(shares, CategoryShare{Name: ct.Name, Minutes: ct.Minutes, Percent: pct})
	}
	return shares
}

// BuildAnalysis assembles the dashboard: proportional chart of category
// totals, magnitude chart of sorted durations, and the textual timeline.
func BuildAnalysis(records []Activity) Analysis {
	totals := CategoryTotals(records)
	pie := make([]ChartPoint, 0, len(totals))
	for _, ct := range totals {
		pie = append(pie, ChartPoint{Label: ct.Name, Value: ct.Minutes})
	}

	sorted := SortedByDurationDescending(records)
	bar := make([]ChartPoint, 0, len(sorted))
	for _, r := range sorted {
		bar = append(bar, ChartPoint{Label: r.Title, Value: r.Minutes})
	}

	return Analysis{
		Total:              TotalMinutes(records),
		Count:              len(records),
		DistinctCategories: DistinctCategoryCount(records),
		Pie:                pie,
		Bar:                bar,
		Timeline:           TimelineLines(records),
		Shares:             CategoryShares(records),
	}
}
