package core

import (
	"errors"
	"strings"
	"testing"
)

func acts(minutes ...int) []Activity {
	out := make([]Activity, len(minutes))
	for i, m := range minutes {
		out[i] = Activity{ID: string(rune('a' + i)), Title: "t", Category: "Other", Minutes: m}
	}
	return out
}

func TestTotalAndRemaining(t *testing.T) {
	cases := []struct {
		in        []Activity
		total     int
		remaining int
	}{
		{nil, 0, 1440},
		{acts(30), 30, 1410},
		{acts(30, 45, 20), 95, 1345},
		{acts(1000, 500), 1500, -60},
	}
	for i, tc := range cases {
		total := TotalMinutes(tc.in)
		if total != tc.total {
			t.Fatalf("case %d total=%d want %d", i, total, tc.total)
		}
		if got := RemainingMinutes(total); got != tc.remaining {
			t.Fatalf("case %d remaining=%d want %d", i, got, tc.remaining)
		}
	}
}

func TestValidateNewActivity(t *testing.T) {
	cases := []struct {
		existing []Activity
		title    string
		minutes  int
		want     error
	}{
		{nil, "Run", 30, nil},
		{nil, "", 30, ErrEmptyTitle},
		{nil, "   \t", 30, ErrEmptyTitle},
		{nil, "", -5, ErrEmptyTitle}, // title checked first
		{nil, strings.Repeat("é", MaxTitleLength), 30, nil},
		{nil, " " + strings.Repeat("é", MaxTitleLength) + " ", 30, nil},
		{nil, strings.Repeat("é", MaxTitleLength+1), 0, ErrTitleTooLong},
		{nil, "Run", 0, ErrNonPositiveDuration},
		{nil, "Run", -1, ErrNonPositiveDuration},
		{acts(1420), "Run", 30, ErrDailyBudgetExceeded},
		{acts(1420), "Run", 20, nil}, // exactly 1440
		{acts(1420), "Run", 0, ErrNonPositiveDuration},
		{acts(1440), "Nap", 1, ErrDailyBudgetExceeded},
	}
	for i, tc := range cases {
		err := ValidateNewActivity(tc.existing, tc.title, tc.minutes)
		if tc.want == nil {
			if err != nil {
				t.Fatalf("case %d expected ok, got %v", i, err)
			}
			continue
		}
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidateNewActivity(acts(1430), "Run", 30)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if ve.Kind != KindDailyBudgetExceeded {
		t.Fatalf("kind=%s", ve.Kind)
	}
	if ve.Message() != "You cannot exceed 1440 minutes per day" {
		t.Fatalf("message=%q", ve.Message())
	}
	if errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("budget error must not match empty title")
	}
}

func TestParseMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"30", 30, true},
		{" 45 ", 45, true},
		{"", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"12abc", 0, false},
		{"1.5", 0, false},
	}
	for i, tc := range cases {
		got, err := ParseMinutes(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("case %d got (%d, %v) want %d", i, got, err, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrNonPositiveDuration) {
			t.Fatalf("case %d expected non-positive duration, got %v", i, err)
		}
	}
}

func TestIsAnalysisEnabled(t *testing.T) {
	cases := map[int]bool{
		0:    false,
		-10:  false,
		1:    true,
		720:  true,
		1440: true,
		1441: false,
	}
	for total, want := range cases {
		if got := IsAnalysisEnabled(total); got != want {
			t.Fatalf("IsAnalysisEnabled(%d)=%v want %v", total, got, want)
		}
	}
}

func TestEmptyDaySummary(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.Remaining != 1440 || s.Count != 0 || s.AnalysisEnabled {
		t.Fatalf("unexpected summary %+v", s)
	}
	if lines := TimelineLines(nil); len(lines) != 0 {
		t.Fatalf("expected empty timeline, got %v", lines)
	}
}

func TestParseDay(t *testing.T) {
	if d, err := ParseDay("2025-03-09"); err != nil || d != "2025-03-09" {
		t.Fatalf("got %q, %v", d, err)
	}
	for _, bad := range []string{"", "2025-13-01", "09/03/2025", "2025-3-9"} {
		if _, err := ParseDay(bad); !errors.Is(err, ErrInvalidDay) {
			t.Fatalf("ParseDay(%q) expected ErrInvalidDay, got %v", bad, err)
		}
	}
}
