//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"daylog/internal/core"
	"daylog/internal/events"
)

// Integration tests require a real spreadsheet shared with a service account.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_ExportRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	cfg := Config{
		SpreadsheetID:   spreadsheetID,
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	}
	if cfg.CredentialsJSON == "" && cfg.CredentialsFile == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	id := uuid.NewString()
	now := time.Now()
	add := events.Added("integration-test", core.DayOf(now), core.Activity{
		ID: id, Title: "Integration check", Category: "Other", Minutes: 1, CreatedAt: now,
	}, now)

	if err := client.AppendActivity(ctx, add); err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	if err := client.RemoveActivity(ctx, events.Deleted(add.UserID, add.Date, id, now)); err != nil {
		t.Fatalf("RemoveActivity: %v", err)
	}

	ids, err := client.readIDs(ctx)
	if err != nil {
		t.Fatalf("readIDs: %v", err)
	}
	if row := findRow(ids, id); row != 0 {
		t.Errorf("activity %s still present at row %d", id, row)
	}
}
