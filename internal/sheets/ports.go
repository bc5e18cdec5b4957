package sheets

import (
	"context"

	"daylog/internal/events"
)

// ActivityExporter mirrors activity changes into a spreadsheet. Both
// operations are idempotent so redelivered events are harmless.
type ActivityExporter interface {
	AppendActivity(ctx context.Context, e events.ActivityEvent) error
	RemoveActivity(ctx context.Context, e events.ActivityEvent) error
}
