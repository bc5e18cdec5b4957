package core

import (
	"errors"
	"strings"
	"time"
)

// DayLayout is the ISO calendar date layout used as the day partition key.
const DayLayout = "2006-01-02"

type (
	// Day is an ISO-8601 calendar date (YYYY-MM-DD) identifying a day partition.
	Day string

	// Activity is one logged activity within a day partition.
	Activity struct {
		ID        string
		Title     string
		Category  string
		Minutes   int
		CreatedAt time.Time
	}

	// NewActivity is the user-supplied part of an activity, before the store
	// assigns an id and a creation marker.
	NewActivity struct {
		Title    string
		Category string
		Minutes  int
	}
)

// Categories is the fixed set offered by the UI. Stores accept other labels.
var Categories = []string{
	"Work",
	"Study",
	"Health",
	"Leisure",
	"Chores",
	"Social",
	"Sleep",
	"Other",
}

// DefaultCategory replaces a missing category at the store boundary.
const DefaultCategory = "Other"

var ErrInvalidDay = errors.New("invalid day")

// ParseDay validates s as YYYY-MM-DD.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", ErrInvalidDay
	}
	return Day(t.Format(DayLayout)), nil
}

// Today returns the current local date.
func Today() Day {
	return DayOf(time.Now())
}

// DayOf returns the calendar date of t in t's location.
func DayOf(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

func (d Day) String() string {
	return string(d)
}

// IsKnownCategory reports whether name is one of Categories.
func IsKnownCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
