package worker

import (
	"context"
	"fmt"
	"log/slog"

	"daylog/internal/events"
	"daylog/internal/observability"
	"daylog/internal/sheets"
)

// ExportWorker applies consumed activity events to the spreadsheet export.
type ExportWorker struct {
	exporter sheets.ActivityExporter
}

func NewExportWorker(exporter sheets.ActivityExporter) *ExportWorker {
	return &ExportWorker{exporter: exporter}
}

// HandleEvent is the consumer callback. A returned error asks the broker to
// redeliver the event.
func (w *ExportWorker) HandleEvent(ctx context.Context, e events.ActivityEvent) error {
	slog.InfoContext(ctx, "Processing activity event",
		"type", e.Type,
		"activity_id", e.Activity.ID,
		"date", e.Date.String())

	var err error
	switch e.Type {
	case events.ActivityAdded:
		err = w.exporter.AppendActivity(ctx, e)
	case events.ActivityDeleted:
		err = w.exporter.RemoveActivity(ctx, e)
	default:
		// Unknown types cannot succeed on retry.
		slog.WarnContext(ctx, "Ignoring unknown activity event", "type", e.Type)
		return nil
	}

	if err != nil {
		observability.RecordExportFailure()
		return fmt.Errorf("export %s %s: %w", e.Type, e.Activity.ID, err)
	}

	observability.RecordExported(string(e.Type), e.OccurredAt)
	slog.InfoContext(ctx, "Exported activity event",
		"type", e.Type,
		"activity_id", e.Activity.ID)
	return nil
}
