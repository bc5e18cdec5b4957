package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"daylog/internal/core"
	applog "daylog/internal/log"
	"daylog/internal/observability"
	"daylog/internal/view"
)

// panelData is the day panel template input.
type panelData struct {
	view.State
	Categories []string
}

// pageData is the full page template input.
type pageData struct {
	SignedIn       bool
	DisplayLabel   string
	GoogleClientID string
	AuthError      string
	Panel          panelData
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady checks templates and the day store
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.activities.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["sessions"] = map[string]any{"entries": s.sessions.Size()}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients()}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := pageData{GoogleClientID: s.googleID}

	if claims, ok := claimsFrom(ctx); ok {
		ctrl, created := s.controllerFor(ctx, claims)
		if raw, ok := ParseDateQuery(r.URL.Query()); ok {
			if err := ctrl.ChangeDate(ctx, raw); errors.Is(err, core.ErrInvalidDay) {
				applog.FromContext(ctx).WarnContext(ctx, "Ignoring invalid date parameter", applog.FieldDate, raw)
			}
		} else if !created {
			_ = ctrl.Refresh(ctx)
		}
		data.SignedIn = true
		data.DisplayLabel = claims.Identity.DisplayLabel
		data.Panel = s.panel(ctx, ctrl.State())
	}

	s.renderPage(w, r, http.StatusOK, data)
}

// handleChangeDate selects another day
func (s *Server) handleChangeDate(w http.ResponseWriter, r *http.Request, ctrl *view.Controller) {
	raw, _ := ParseDateQuery(r.URL.Query())
	err := ctrl.ChangeDate(r.Context(), raw)
	if errors.Is(err, core.ErrInvalidDay) {
		BadRequestError("Enter a valid date.").
			NotifyError("Enter a valid date.").
			Write(w)
		return
	}

	state := ctrl.State()
	s.writePanel(w, r, NewHTMXResponse().Status(statusFor(err)).DayChanged(state.Date.String()), state)
}

func (s *Server) handleAddActivity(w http.ResponseWriter, r *http.Request, ctrl *view.Controller) {
	form, fail := ParseActivityForm(r)
	if fail != nil {
		fail.Write(w)
		return
	}

	err := ctrl.AddActivity(r.Context(), form.Title, form.Category, form.Minutes)
	state := ctrl.State()

	var verr *core.ValidationError
	switch {
	case err == nil:
		s.writePanel(w, r, NewHTMXResponse().
			ResetForm().
			DayChanged(state.Date.String()), state)
	case errors.As(err, &verr):
		observability.RecordValidationRejection(verr.Kind)
		s.writePanel(w, r, NewHTMXResponse().Status(http.StatusUnprocessableEntity), state)
	default:
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Add activity failed",
			applog.FieldDate, state.Date.String(),
			applog.FieldError, err)
		s.writePanel(w, r, NewHTMXResponse().Status(statusFor(err)), state)
	}
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request, ctrl *view.Controller) {
	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		BadRequestError("Missing activity id").Write(w)
		return
	}

	err := ctrl.DeleteActivity(r.Context(), id)
	state := ctrl.State()

	b := NewHTMXResponse().Status(statusFor(err))
	if err == nil {
		b.DayChanged(state.Date.String())
	}
	s.writePanel(w, r, b, state)
}

func (s *Server) handleOpenAnalysis(w http.ResponseWriter, r *http.Request, ctrl *view.Controller) {
	b := NewHTMXResponse()
	if err := ctrl.OpenAnalysis(); errors.Is(err, view.ErrAnalysisDisabled) {
		b.Status(http.StatusConflict).
			Notify(NotifyWarning, "Log some activities before opening the analysis.")
	}
	s.writePanel(w, r, b, ctrl.State())
}

func (s *Server) handleCloseAnalysis(w http.ResponseWriter, r *http.Request, ctrl *view.Controller) {
	ctrl.CloseAnalysis()
	s.writePanel(w, r, NewHTMXResponse(), ctrl.State())
}

// handleCharts returns the Chart.js series of the open analysis
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request, ctrl *view.Controller) {
	charts, ok := ctrl.State().Charts()
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "analysis is closed"})
		return
	}
	writeJSON(w, http.StatusOK, charts)
}

func (s *Server) panel(ctx context.Context, state view.State) panelData {
	cats, err := s.activities.Categories(ctx)
	if err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Category list failed, using defaults", applog.FieldError, err)
		cats = core.Categories
	}
	return panelData{State: state, Categories: cats}
}

// writePanel renders the day panel into b. A notice on the state becomes
// an error notification as well.
func (s *Server) writePanel(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, state view.State) {
	if s.templates == nil {
		InternalServerError("Templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "day_panel", s.panel(r.Context(), state)); err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Template execution error",
			"template", "day_panel",
			applog.FieldError, err)
		InternalServerError("Error rendering the day").Write(w)
		return
	}
	if state.Notice != "" {
		b.NotifyError(state.Notice)
	}
	b.HTML(buf.Bytes()).Write(w)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	if s.templates == nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			"error_type", applog.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			applog.FieldError, err, "template", "index.html")
		http.Error(w, "error rendering page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
