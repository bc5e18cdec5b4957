package core

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// DailyBudget is the number of minutes in a calendar day.
	DailyBudget = 1440

	// MaxTitleLength is the longest title accepted, in runes after trimming.
	MaxTitleLength = 200
)

// DaySummary feeds the stats panel of the day view.
type DaySummary struct {
	Total           int
	Remaining       int
	Count           int
	AnalysisEnabled bool
}

// TotalMinutes sums the minutes of records. It is 0 for an empty day.
func TotalMinutes(records []Activity) int {
	total := 0
	for _, r := range records {
		total += r.Minutes
	}
	return total
}

// RemainingMinutes is DailyBudget minus total. Over-allocation yields a
// negative value, which is displayed as is.
func RemainingMinutes(total int) int {
	return DailyBudget - total
}

// ValidateNewActivity checks a proposed activity against a day's existing
// records. Checks run in order (title, duration, budget) and only the first
// failure is reported. A new total of exactly DailyBudget is accepted.
func ValidateNewActivity(existing []Activity, title string, minutes int) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return invalid(KindEmptyTitle)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return invalid(KindTitleTooLong)
	}
	if minutes <= 0 {
		return invalid(KindNonPositiveDuration)
	}
	if TotalMinutes(existing)+minutes > DailyBudget {
		return invalid(KindDailyBudgetExceeded)
	}
	return nil
}

// ParseMinutes reads a minutes form value. Empty or non-integer input is
// reported as a non-positive duration, like zero or negative input.
func ParseMinutes(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n <= 0 {
		return 0, invalid(KindNonPositiveDuration)
	}
	return n, nil
}

// IsAnalysisEnabled gates the dashboard: there must be something logged and
// the day must not be over budget.
func IsAnalysisEnabled(total int) bool {
	return total > 0 && total <= DailyBudget
}

// Summarize computes the stats panel numbers for a day.
func Summarize(records []Activity) DaySummary {
	total := TotalMinutes(records)
	return DaySummary{
		Total:           total,
		Remaining:       RemainingMinutes(total),
		Count:           len(records),
		AnalysisEnabled: IsAnalysisEnabled(total),
	}
}
