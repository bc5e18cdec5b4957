package google

import (
	"testing"
	"time"

	"daylog/internal/core"
	"daylog/internal/events"
)

func TestActivityRow(t *testing.T) {
	created := time.Date(2024, 5, 6, 7, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	e := events.Added("u1", "2024-05-06", core.Activity{ID: "a1", Title: "Run", Category: "Health", Minutes: 30, CreatedAt: created}, created)

	row := activityRow(e)
	want := []interface{}{"a1", "u1", "2024-05-06", "Run", "Health", 30, "2024-05-06T05:30:00Z"}
	if len(row) != len(want) {
		t.Fatalf("row has %d cells, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, row[i], want[i])
		}
	}
	if len(header) != len(row) {
		t.Errorf("header has %d columns, row has %d", len(header), len(row))
	}
}

func TestFindRow(t *testing.T) {
	values := [][]interface{}{
		{"ID"},
		{"a1"},
		{},
		{" a2 "},
	}
	tests := []struct {
		id   string
		want int
	}{
		{"a1", 2},
		{"a2", 4},
		{"missing", 0},
	}
	for _, tt := range tests {
		if got := findRow(values, tt.id); got != tt.want {
			t.Errorf("findRow(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
	if !isHeader(values) {
		t.Error("first row should be recognised as header")
	}
	if isHeader(values[1:]) {
		t.Error("data row recognised as header")
	}
}
