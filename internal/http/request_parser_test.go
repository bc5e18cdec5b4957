package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"daylog/internal/core"
	"daylog/internal/days"
	"daylog/internal/view"
)

func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/activities", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseActivityForm(t *testing.T) {
	form, fail := ParseActivityForm(formRequest(url.Values{
		"title":    {"  Deep work\x00 "},
		"category": {" Work "},
		"minutes":  {" 90 "},
	}))
	if fail != nil {
		t.Fatal("unexpected parse failure")
	}
	if form.Title != "Deep work" {
		t.Errorf("Title = %q, want control characters stripped", form.Title)
	}
	if form.Category != "Work" || form.Minutes != "90" {
		t.Errorf("form = %+v", form)
	}
}

func TestParseActivityForm_KeepsRawMinutes(t *testing.T) {
	form, fail := ParseActivityForm(formRequest(url.Values{"title": {"x"}, "minutes": {"12abc"}}))
	if fail != nil {
		t.Fatal("unexpected parse failure")
	}
	if form.Minutes != "12abc" {
		t.Errorf("Minutes = %q, want the raw input", form.Minutes)
	}
}

func TestParseActivityForm_KeepsLongTitle(t *testing.T) {
	long := strings.Repeat("é", core.MaxTitleLength+20)
	form, _ := ParseActivityForm(formRequest(url.Values{"title": {long}}))
	if form.Title != long {
		t.Errorf("title changed: %d runes, want %d", len([]rune(form.Title)), core.MaxTitleLength+20)
	}
}

func TestParseCredentialsForm(t *testing.T) {
	form, fail := ParseCredentialsForm(formRequest(url.Values{
		"email":    {" ada@example.com "},
		"password": {" secret "},
		"name":     {"Ada"},
	}))
	if fail != nil {
		t.Fatal("unexpected parse failure")
	}
	if form.Email != "ada@example.com" {
		t.Errorf("Email = %q", form.Email)
	}
	if form.Password != " secret " {
		t.Errorf("Password = %q, want it untouched", form.Password)
	}
}

func TestParseFormOrFail_BodyTooLarge(t *testing.T) {
	body := "title=" + strings.Repeat("a", maxFormBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/activities", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	fail := ParseFormOrFail(req)
	if fail == nil {
		t.Fatal("expected a failure response")
	}
	w := httptest.NewRecorder()
	fail.Write(w)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestParseDateQuery(t *testing.T) {
	if _, ok := ParseDateQuery(url.Values{}); ok {
		t.Error("missing date should report false")
	}
	if v, ok := ParseDateQuery(url.Values{"date": {" 2024-05-06 "}}); !ok || v != "2024-05-06" {
		t.Errorf("ParseDateQuery() = %q, %v", v, ok)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{view.ErrNotSignedIn, http.StatusUnauthorized},
		{days.NotFound("delete", "x"), http.StatusNotFound},
		{days.ErrPermissionDenied, http.StatusForbidden},
		{days.Unavailable("list", errors.New("boom")), http.StatusServiceUnavailable},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\tb\x07c\n "); got != "a\tbc" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}
