package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// NotifyLevel selects the style of a show-notification toast.
type NotifyLevel string

const (
	NotifyError   NotifyLevel = "error"
	NotifyWarning NotifyLevel = "warning"
)

// notification is the show-notification event payload read by app.js.
type notification struct {
	Type     NotifyLevel `json:"type"`
	Message  string      `json:"message"`
	Duration int         `json:"duration"`
}

// HTMXResponseBuilder assembles a partial response: status, HX-* headers
// and an HTML body. Triggers are encoded into a single HX-Trigger header.
type HTMXResponseBuilder struct {
	status   int
	triggers map[string]any
	header   http.Header
	body     []byte
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		status:   http.StatusOK,
		triggers: map[string]any{},
		header:   http.Header{},
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.status = code
	return b
}

// Trigger adds a client event. A later trigger with the same name wins.
func (b *HTMXResponseBuilder) Trigger(name string, detail any) *HTMXResponseBuilder {
	b.triggers[name] = detail
	return b
}

// DayChanged tells listeners which date the panel now shows.
func (b *HTMXResponseBuilder) DayChanged(date string) *HTMXResponseBuilder {
	return b.Trigger("day:changed", map[string]string{"date": date})
}

// ResetForm clears the add-activity form after a successful add.
func (b *HTMXResponseBuilder) ResetForm() *HTMXResponseBuilder {
	return b.Trigger("form:reset", struct{}{})
}

// Notify shows a toast. Errors stay up longer than warnings.
func (b *HTMXResponseBuilder) Notify(level NotifyLevel, message string) *HTMXResponseBuilder {
	duration := 4000
	if level == NotifyError {
		duration = 5000
	}
	return b.Trigger("show-notification", notification{Type: level, Message: message, Duration: duration})
}

func (b *HTMXResponseBuilder) NotifyError(message string) *HTMXResponseBuilder {
	return b.Notify(NotifyError, message)
}

// Redirect makes htmx load url as a full page.
func (b *HTMXResponseBuilder) Redirect(url string) *HTMXResponseBuilder {
	b.header.Set("HX-Redirect", url)
	return b
}

func (b *HTMXResponseBuilder) HTML(body []byte) *HTMXResponseBuilder {
	b.header.Set("Content-Type", "text/html; charset=utf-8")
	b.body = body
	return b
}

func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, values := range b.header {
		w.Header()[name] = values
	}
	if len(b.triggers) > 0 {
		if encoded, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(encoded))
		}
	}
	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse is an escaped error fragment with the given status.
func ErrorResponse(status int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(status).
		HTML([]byte(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`))
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}
