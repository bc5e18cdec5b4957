package days

import (
	"errors"
	"strings"
	"time"

	"daylog/internal/core"
)

// ErrMalformedRecord marks a stored row that cannot become a core.Activity.
var ErrMalformedRecord = errors.New("malformed activity record")

// UntitledTitle replaces a missing title read back from a store.
const UntitledTitle = "Untitled"

// Record is a row as read from a backend, before validation.
type Record struct {
	ID        string
	Title     string
	Category  string
	Minutes   int64
	CreatedAt time.Time
}

// Decode turns a raw row into the closed activity type. Rows without an id,
// with non-positive minutes or without a creation marker are rejected.
// Missing titles and categories are defaulted.
func Decode(r Record) (core.Activity, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return core.Activity{}, errors.Join(ErrMalformedRecord, errors.New("missing id"))
	}
	if r.Minutes <= 0 || r.Minutes > core.DailyBudget {
		return core.Activity{}, errors.Join(ErrMalformedRecord, errors.New("minutes out of range"))
	}
	if r.CreatedAt.IsZero() {
		return core.Activity{}, errors.Join(ErrMalformedRecord, errors.New("missing creation marker"))
	}

	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = UntitledTitle
	}
	category := strings.TrimSpace(r.Category)
	if category == "" {
		category = core.DefaultCategory
	}

	return core.Activity{
		ID:        id,
		Title:     title,
		Category:  category,
		Minutes:   int(r.Minutes),
		CreatedAt: r.CreatedAt,
	}, nil
}

// CheckPartition refuses writes and reads without an owner.
func CheckPartition(op, user string, day core.Day) error {
	if strings.TrimSpace(user) == "" {
		return &StoreError{Op: op, Kind: ErrPermissionDenied}
	}
	if _, err := core.ParseDay(string(day)); err != nil {
		return &StoreError{Op: op, Kind: ErrPermissionDenied, Err: err}
	}
	return nil
}

// NotFound builds the error returned when id is not in the partition.
func NotFound(op, id string) error {
	return &StoreError{Op: op, Kind: ErrNotFound, Err: errors.New("id " + id)}
}
