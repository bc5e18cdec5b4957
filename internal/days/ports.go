// Package days defines the day store port: listing, adding and deleting the
// activities of one (user, date) partition.
package days

import (
	"context"
	"errors"

	"daylog/internal/core"
)

var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("activity not found")
)

type (
	// Store is implemented by every backend. List returns records ordered by
	// creation marker ascending. Callers re-list after each mutation rather
	// than patching their snapshot.
	Store interface {
		List(ctx context.Context, user string, day core.Day) ([]core.Activity, error)
		Add(ctx context.Context, user string, day core.Day, in core.NewActivity) (core.Activity, error)
		Delete(ctx context.Context, user string, day core.Day, id string) error
	}

	// CategoryLister is optionally implemented by stores that offer their own
	// category set to the add form.
	CategoryLister interface {
		Categories(ctx context.Context) ([]string, error)
	}

	// Pinger is optionally implemented by stores that can report readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// Unavailable wraps a transport or driver error as ErrStoreUnavailable.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Kind: ErrStoreUnavailable, Err: err}
}

// StoreError carries the failed operation, the classification sentinel and
// the underlying cause.
type StoreError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *StoreError) Is(target error) bool {
	return target == e.Kind
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
