package view

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"daylog/internal/core"
	"daylog/internal/days"
	"daylog/internal/session"
)

var (
	ErrNotSignedIn      = errors.New("not signed in")
	ErrAnalysisDisabled = errors.New("analysis is not available for this day")
	// ErrSuperseded marks a fetch whose result arrived after a newer date,
	// identity or fetch took over. It is never shown to the user.
	ErrSuperseded = errors.New("fetch superseded")
)

// Controller owns the day view state. Every event goes through it and
// produces a new State.
type Controller struct {
	store  days.Store
	logger *slog.Logger

	mu    sync.Mutex
	state State
	gen   uint64
}

// NewController builds a controller showing date and subscribes it to
// identity changes from provider.
func NewController(store days.Store, provider session.Provider, date core.Day, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		store:  store,
		logger: logger,
		state:  emptyState(session.Identity{}, false, date),
	}
	if id, ok := provider.Current(); ok {
		c.state = emptyState(id, true, date)
	}
	provider.OnIdentityChanged(c.identityChanged)
	return c
}

func emptyState(id session.Identity, signedIn bool, date core.Day) State {
	return State{
		Identity: id,
		SignedIn: signedIn,
		Date:     date,
		Summary:  core.Summarize(nil),
	}
}

// State returns a copy of the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) identityChanged(ctx context.Context, id *session.Identity) {
	c.mu.Lock()
	date := c.state.Date
	c.gen++
	if id == nil {
		c.state = emptyState(session.Identity{}, false, date)
		c.state.Generation = c.gen
		c.mu.Unlock()
		return
	}
	c.state = emptyState(*id, true, date)
	c.state.Generation = c.gen
	c.mu.Unlock()

	ignoreSuperseded(c.refetch(ctx))
}

// ChangeDate selects another day and loads it. The previous day's
// activities are dropped immediately.
func (c *Controller) ChangeDate(ctx context.Context, raw string) error {
	date, err := core.ParseDay(raw)
	if err != nil {
		return err
	}

	c.mu.Lock()
	next := emptyState(c.state.Identity, c.state.SignedIn, date)
	c.gen++
	next.Generation = c.gen
	c.state = next
	signedIn := next.SignedIn
	c.mu.Unlock()

	if !signedIn {
		return nil
	}
	return ignoreSuperseded(c.refetch(ctx))
}

// Refresh re-lists the selected day.
func (c *Controller) Refresh(ctx context.Context) error {
	return ignoreSuperseded(c.refetch(ctx))
}

// AddActivity validates the form input against the current snapshot, stores
// the activity and re-lists the day.
func (c *Controller) AddActivity(ctx context.Context, title, category, minutesInput string) error {
	c.mu.Lock()
	if !c.state.SignedIn {
		c.state = c.withNotice(MessageFor(ErrNotSignedIn))
		c.mu.Unlock()
		return ErrNotSignedIn
	}
	user := c.state.Identity.ID
	date := c.state.Date
	existing := c.state.Activities
	c.mu.Unlock()

	// Unparseable input becomes 0 so the title check still runs first.
	minutes, _ := core.ParseMinutes(minutesInput)
	err := core.ValidateNewActivity(existing, title, minutes)
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		c.mu.Lock()
		next := c.state
		next.Validation = verr.Message()
		next.Notice = ""
		c.state = next
		c.mu.Unlock()
		return err
	}

	_, err = c.store.Add(ctx, user, date, core.NewActivity{
		Title:    strings.TrimSpace(title),
		Category: strings.TrimSpace(category),
		Minutes:  minutes,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "add activity failed", "date", date.String(), "error", err)
		c.mu.Lock()
		c.state = c.withNotice(MessageFor(err))
		c.mu.Unlock()
		return err
	}

	return ignoreSuperseded(c.refetch(ctx))
}

// DeleteActivity removes id from the selected day and re-lists it. The
// re-list also runs when the activity was already gone.
func (c *Controller) DeleteActivity(ctx context.Context, id string) error {
	c.mu.Lock()
	if !c.state.SignedIn {
		c.state = c.withNotice(MessageFor(ErrNotSignedIn))
		c.mu.Unlock()
		return ErrNotSignedIn
	}
	user := c.state.Identity.ID
	date := c.state.Date
	c.mu.Unlock()

	delErr := c.store.Delete(ctx, user, date, id)
	if delErr != nil && !errors.Is(delErr, days.ErrNotFound) {
		c.logger.WarnContext(ctx, "delete activity failed", "date", date.String(), "activity_id", id, "error", delErr)
		c.mu.Lock()
		c.state = c.withNotice(MessageFor(delErr))
		c.mu.Unlock()
		return delErr
	}

	if err := ignoreSuperseded(c.refetch(ctx)); err != nil {
		return err
	}
	if delErr != nil {
		c.mu.Lock()
		c.state = c.withNotice(MessageFor(delErr))
		c.mu.Unlock()
	}
	return delErr
}

// OpenAnalysis opens the dashboard for the selected day. Messages left by
// earlier actions are cleared either way.
func (c *Controller) OpenAnalysis() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.withNotice("")
	if !next.Summary.AnalysisEnabled {
		c.state = next
		return ErrAnalysisDisabled
	}
	analysis := core.BuildAnalysis(next.Activities)
	next.Analysis = &analysis
	c.state = next
	return nil
}

// CloseAnalysis closes the dashboard. Closing a closed dashboard only clears
// messages left by earlier actions.
func (c *Controller) CloseAnalysis() {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.withNotice("")
	next.Analysis = nil
	c.state = next
}

// refetch lists the selected day and installs the result, unless a newer
// fetch, date or identity has taken over in the meantime.
func (c *Controller) refetch(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.SignedIn {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen := c.gen
	user := c.state.Identity.ID
	date := c.state.Date
	c.mu.Unlock()

	records, err := c.store.List(ctx, user, date)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return ErrSuperseded
	}
	if err != nil {
		c.logger.WarnContext(ctx, "list activities failed", "date", date.String(), "error", err)
		next := c.withNotice(MessageFor(err))
		next.Generation = gen
		c.state = next
		return err
	}

	next := c.state
	next.Activities = records
	next.Summary = core.Summarize(records)
	next.Validation = ""
	next.Notice = ""
	next.Generation = gen
	if next.Analysis != nil {
		if next.Summary.AnalysisEnabled {
			analysis := core.BuildAnalysis(records)
			next.Analysis = &analysis
		} else {
			next.Analysis = nil
		}
	}
	c.state = next
	return nil
}

// withNotice must be called with mu held.
func (c *Controller) withNotice(msg string) State {
	next := c.state
	next.Notice = msg
	next.Validation = ""
	return next
}

func ignoreSuperseded(err error) error {
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	return err
}

// MessageFor is the notice text shown for a failed action.
func MessageFor(err error) string {
	switch {
	case errors.Is(err, ErrNotSignedIn):
		return "Please login first."
	case errors.Is(err, days.ErrNotFound):
		return "That activity no longer exists."
	case errors.Is(err, days.ErrPermissionDenied):
		return "You do not have access to this day."
	case errors.Is(err, days.ErrStoreUnavailable):
		return "The activity store is unavailable. Try again."
	default:
		return "Something went wrong. Try again."
	}
}
