package google

import (
	"fmt"
	"strings"
	"time"

	"daylog/internal/events"
)

// Columns of the export sheet, A through G.
var header = []string{"ID", "User", "Date", "Title", "Category", "Minutes", "Created"}

const lastColumn = "G"

func activityRow(e events.ActivityEvent) []interface{} {
	created := ""
	if !e.Activity.CreatedAt.IsZero() {
		created = e.Activity.CreatedAt.UTC().Format(time.RFC3339)
	}
	return []interface{}{
		e.Activity.ID,
		e.UserID,
		e.Date.String(),
		e.Activity.Title,
		e.Activity.Category,
		e.Activity.Minutes,
		created,
	}
}

// findRow returns the 1-based sheet row whose first cell equals id, or 0.
func findRow(values [][]interface{}, id string) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}

func isHeader(values [][]interface{}) bool {
	if len(values) == 0 || len(values[0]) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(fmt.Sprint(values[0][0])), header[0])
}
