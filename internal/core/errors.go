package core

import (
	"errors"
	"fmt"
)

// ValidationKind identifies why a proposed activity was refused.
type ValidationKind string

const (
	KindEmptyTitle          ValidationKind = "empty_title"
	KindTitleTooLong        ValidationKind = "title_too_long"
	KindNonPositiveDuration ValidationKind = "non_positive_duration"
	KindDailyBudgetExceeded ValidationKind = "daily_budget_exceeded"
)

var (
	ErrEmptyTitle          = errors.New("empty title")
	ErrTitleTooLong        = errors.New("title too long")
	ErrNonPositiveDuration = errors.New("minutes must be positive")
	ErrDailyBudgetExceeded = errors.New("daily budget exceeded")
)

// ValidationError is returned by ValidateNewActivity and ParseMinutes.
// errors.Is matches it against the sentinel for its kind.
type ValidationError struct {
	Kind ValidationKind
}

func (e *ValidationError) Error() string {
	return e.sentinel().Error()
}

func (e *ValidationError) Is(target error) bool {
	return target == e.sentinel()
}

// Message is the text shown next to the add form.
func (e *ValidationError) Message() string {
	switch e.Kind {
	case KindEmptyTitle:
		return "Enter a title"
	case KindTitleTooLong:
		return fmt.Sprintf("Titles can be at most %d characters", MaxTitleLength)
	case KindNonPositiveDuration:
		return "Minutes must be positive"
	case KindDailyBudgetExceeded:
		return "You cannot exceed 1440 minutes per day"
	default:
		return "Invalid activity"
	}
}

func (e *ValidationError) sentinel() error {
	switch e.Kind {
	case KindEmptyTitle:
		return ErrEmptyTitle
	case KindTitleTooLong:
		return ErrTitleTooLong
	case KindNonPositiveDuration:
		return ErrNonPositiveDuration
	default:
		return ErrDailyBudgetExceeded
	}
}

func invalid(kind ValidationKind) error {
	return &ValidationError{Kind: kind}
}
