package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decodeTriggers(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	raw := w.Header().Get("HX-Trigger")
	if raw == "" {
		t.Fatal("HX-Trigger header not set")
	}
	var triggers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v (%s)", err, raw)
	}
	return triggers
}

func TestPanelResponseAfterAdd(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		DayChanged("2024-05-06").
		ResetForm().
		HTML([]byte(`<section id="day-panel"></section>`)).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != `<section id="day-panel"></section>` {
		t.Errorf("body = %q", w.Body.String())
	}

	triggers := decodeTriggers(t, w)
	if string(triggers["day:changed"]) != `{"date":"2024-05-06"}` {
		t.Errorf("day:changed = %s", triggers["day:changed"])
	}
	if _, ok := triggers["form:reset"]; !ok {
		t.Error("form:reset missing")
	}
}

func TestNotifyLevels(t *testing.T) {
	tests := []struct {
		level    NotifyLevel
		duration int
	}{
		{NotifyError, 5000},
		{NotifyWarning, 4000},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHTMXResponse().Notify(tt.level, "Heads up").Write(w)

			var got notification
			if err := json.Unmarshal(decodeTriggers(t, w)["show-notification"], &got); err != nil {
				t.Fatalf("decode notification: %v", err)
			}
			want := notification{Type: tt.level, Message: "Heads up", Duration: tt.duration}
			if got != want {
				t.Errorf("notification = %+v, want %+v", got, want)
			}
		})
	}
}

func TestLaterTriggerWins(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().
		NotifyError("first").
		NotifyError("second").
		Write(w)

	var got notification
	if err := json.Unmarshal(decodeTriggers(t, w)["show-notification"], &got); err != nil {
		t.Fatalf("decode notification: %v", err)
	}
	if got.Message != "second" {
		t.Errorf("message = %q, want second", got.Message)
	}
}

func TestRedirect(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().Redirect("/").Write(w)

	if got := w.Header().Get("HX-Redirect"); got != "/" {
		t.Errorf("HX-Redirect = %q, want /", got)
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should be absent without triggers")
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		build  *HTMXResponseBuilder
		status int
		body   string
	}{
		{"bad request", BadRequestError("Enter a valid date."), http.StatusBadRequest, `<div class="error">Enter a valid date.</div>`},
		{"internal", InternalServerError("Error rendering the day"), http.StatusInternalServerError, `<div class="error">Error rendering the day</div>`},
		{"escaped", ErrorResponse(http.StatusUnauthorized, `<b>"no"</b>`), http.StatusUnauthorized, `<div class="error">&lt;b&gt;&#34;no&#34;&lt;/b&gt;</div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.build.Write(w)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}
