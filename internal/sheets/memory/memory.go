package memory

import (
	"context"
	"sync"

	"daylog/internal/events"
	ports "daylog/internal/sheets"
)

// Exporter keeps exported rows in process. Used in dev and tests.
type Exporter struct {
	mu   sync.Mutex
	rows []events.ActivityEvent
}

var _ ports.ActivityExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

func (x *Exporter) AppendActivity(_ context.Context, e events.ActivityEvent) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.indexOf(e.Activity.ID) >= 0 {
		return nil
	}
	x.rows = append(x.rows, e)
	return nil
}

func (x *Exporter) RemoveActivity(_ context.Context, e events.ActivityEvent) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if i := x.indexOf(e.Activity.ID); i >= 0 {
		x.rows = append(x.rows[:i:i], x.rows[i+1:]...)
	}
	return nil
}

// Rows returns the exported activities in append order.
func (x *Exporter) Rows() []events.ActivityEvent {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]events.ActivityEvent(nil), x.rows...)
}

func (x *Exporter) indexOf(id string) int {
	for i, r := range x.rows {
		if r.Activity.ID == id {
			return i
		}
	}
	return -1
}
