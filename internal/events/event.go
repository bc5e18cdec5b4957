// Package events describes activity change notifications and how they are
// delivered to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"daylog/internal/core"
)

type Type string

const (
	ActivityAdded   Type = "activity.added"
	ActivityDeleted Type = "activity.deleted"
)

// ActivityEvent is published after a successful add or delete. Deleted
// events carry only the id in Activity.
type ActivityEvent struct {
	Type       Type         `json:"type"`
	UserID     string       `json:"user_id"`
	Date       core.Day     `json:"date"`
	Activity   ActivityData `json:"activity"`
	OccurredAt time.Time    `json:"occurred_at"`
}

type ActivityData struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Category  string    `json:"category,omitempty"`
	Minutes   int       `json:"minutes,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Publisher delivers events to one transport.
type Publisher interface {
	Publish(ctx context.Context, e ActivityEvent) error
	Close() error
}

func Added(user string, day core.Day, a core.Activity, at time.Time) ActivityEvent {
	return ActivityEvent{
		Type:   ActivityAdded,
		UserID: user,
		Date:   day,
		Activity: ActivityData{
			ID:        a.ID,
			Title:     a.Title,
			Category:  a.Category,
			Minutes:   a.Minutes,
			CreatedAt: a.CreatedAt,
		},
		OccurredAt: at.UTC(),
	}
}

func Deleted(user string, day core.Day, id string, at time.Time) ActivityEvent {
	return ActivityEvent{
		Type:       ActivityDeleted,
		UserID:     user,
		Date:       day,
		Activity:   ActivityData{ID: id},
		OccurredAt: at.UTC(),
	}
}

// Key partitions events by user and day.
func (e ActivityEvent) Key() string {
	return e.UserID + "/" + e.Date.String()
}

func (e ActivityEvent) Validate() error {
	switch e.Type {
	case ActivityAdded, ActivityDeleted:
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.UserID == "" || e.Activity.ID == "" {
		return errors.New("event lacks user or activity id")
	}
	if _, err := core.ParseDay(e.Date.String()); err != nil {
		return fmt.Errorf("event date %q: %w", e.Date, err)
	}
	return nil
}

func Encode(e ActivityEvent) ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses and validates an encoded event.
func Decode(data []byte) (ActivityEvent, error) {
	var e ActivityEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ActivityEvent{}, err
	}
	if err := e.Validate(); err != nil {
		return ActivityEvent{}, err
	}
	return e, nil
}
