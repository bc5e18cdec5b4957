package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"daylog/internal/core"
	"daylog/internal/events"
	"daylog/internal/sheets/memory"
)

type failingExporter struct{}

func (failingExporter) AppendActivity(context.Context, events.ActivityEvent) error {
	return errors.New("quota exceeded")
}

func (failingExporter) RemoveActivity(context.Context, events.ActivityEvent) error {
	return errors.New("quota exceeded")
}

func TestHandleEventDispatch(t *testing.T) {
	ctx := context.Background()
	exporter := memory.New()
	w := NewExportWorker(exporter)
	now := time.Now()

	add := events.Added("u1", "2024-05-06", core.Activity{ID: "a1", Title: "Run", Minutes: 30}, now)
	if err := w.HandleEvent(ctx, add); err != nil {
		t.Fatalf("HandleEvent(added): %v", err)
	}
	if got := len(exporter.Rows()); got != 1 {
		t.Fatalf("rows after add = %d, want 1", got)
	}

	if err := w.HandleEvent(ctx, events.Deleted("u1", "2024-05-06", "a1", now)); err != nil {
		t.Fatalf("HandleEvent(deleted): %v", err)
	}
	if got := len(exporter.Rows()); got != 0 {
		t.Fatalf("rows after delete = %d, want 0", got)
	}

	unknown := add
	unknown.Type = "activity.renamed"
	if err := w.HandleEvent(ctx, unknown); err != nil {
		t.Fatalf("unknown events should be acknowledged, got %v", err)
	}
}

func TestHandleEventFailureIsReturned(t *testing.T) {
	w := NewExportWorker(failingExporter{})
	e := events.Added("u1", "2024-05-06", core.Activity{ID: "a1", Title: "Run", Minutes: 30}, time.Now())

	err := w.HandleEvent(context.Background(), e)
	if err == nil {
		t.Fatal("expected the exporter error")
	}
}
