package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"daylog/internal/core"
	"daylog/internal/days"
	"daylog/internal/events"
	"daylog/internal/observability"
)

// listTimeout bounds a day listing so a slow store cannot hang a page.
const listTimeout = 7 * time.Second

type publisher struct {
	name string
	events.Publisher
}

// Option configures an ActivityService.
type Option func(*ActivityService)

// WithPublisher fans activity events out to p. name labels its metrics and
// log lines.
func WithPublisher(name string, p events.Publisher) Option {
	return func(s *ActivityService) {
		if p != nil {
			s.publishers = append(s.publishers, publisher{name: name, Publisher: p})
		}
	}
}

// ActivityService is the day store used by every entry point. It records
// metrics and publishes an event after each successful mutation.
type ActivityService struct {
	store      days.Store
	publishers []publisher
	now        func() time.Time
}

var (
	_ days.Store          = (*ActivityService)(nil)
	_ days.CategoryLister = (*ActivityService)(nil)
	_ days.Pinger         = (*ActivityService)(nil)
)

func NewActivityService(store days.Store, opts ...Option) *ActivityService {
	s := &ActivityService{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ActivityService) List(ctx context.Context, user string, day core.Day) ([]core.Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	list, err := s.store.List(ctx, user, day)
	if err != nil {
		observability.RecordStoreError("list")
		return nil, err
	}
	return list, nil
}

func (s *ActivityService) Add(ctx context.Context, user string, day core.Day, in core.NewActivity) (core.Activity, error) {
	a, err := s.store.Add(ctx, user, day, in)
	if err != nil {
		observability.RecordStoreError("add")
		return core.Activity{}, err
	}
	observability.RecordActivityAdded()
	s.publish(ctx, events.Added(user, day, a, s.now()))
	return a, nil
}

func (s *ActivityService) Delete(ctx context.Context, user string, day core.Day, id string) error {
	if err := s.store.Delete(ctx, user, day, id); err != nil {
		if !errors.Is(err, days.ErrNotFound) {
			observability.RecordStoreError("delete")
		}
		return err
	}
	observability.RecordActivityDeleted()
	s.publish(ctx, events.Deleted(user, day, id, s.now()))
	return nil
}

// LogActivity validates raw form input against the stored day and adds it.
// It applies the same rules as the day view.
func (s *ActivityService) LogActivity(ctx context.Context, user string, day core.Day, title, category, minutesInput string) (core.Activity, error) {
	existing, err := s.List(ctx, user, day)
	if err != nil {
		return core.Activity{}, err
	}

	minutes, _ := core.ParseMinutes(minutesInput)
	if err := core.ValidateNewActivity(existing, title, minutes); err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			observability.RecordValidationRejection(verr.Kind)
		}
		return core.Activity{}, err
	}

	return s.Add(ctx, user, day, core.NewActivity{
		Title:    strings.TrimSpace(title),
		Category: strings.TrimSpace(category),
		Minutes:  minutes,
	})
}

// Categories returns the categories offered by the store, or the built-in
// set when the store has none.
func (s *ActivityService) Categories(ctx context.Context) ([]string, error) {
	if lister, ok := s.store.(days.CategoryLister); ok {
		cats, err := lister.Categories(ctx)
		if err != nil {
			return nil, err
		}
		if len(cats) > 0 {
			return cats, nil
		}
	}
	return append([]string(nil), core.Categories...), nil
}

func (s *ActivityService) Ping(ctx context.Context) error {
	if p, ok := s.store.(days.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// publish never fails the caller: the activity is already stored.
func (s *ActivityService) publish(ctx context.Context, e events.ActivityEvent) {
	if len(s.publishers) == 0 {
		slog.DebugContext(ctx, "No event publishers configured, skipping", "type", e.Type)
		return
	}
	for _, p := range s.publishers {
		if err := p.Publish(ctx, e); err != nil {
			observability.RecordPublishFailure(p.name)
			slog.ErrorContext(ctx, "Failed to publish activity event",
				"transport", p.name,
				"type", e.Type,
				"activity_id", e.Activity.ID,
				"error", err)
		}
	}
}

// Close releases the publishers and, when it holds resources, the store.
func (s *ActivityService) Close() error {
	var errs []error
	for _, p := range s.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.name, err))
		}
	}
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close activity service: %w", errors.Join(errs...))
	}
	return nil
}
