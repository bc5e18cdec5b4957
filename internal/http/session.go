package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"daylog/internal/core"
	applog "daylog/internal/log"
	"daylog/internal/session"
	"daylog/internal/view"
)

const sessionCookie = "daylog_session"

type contextKey int

const claimsKey contextKey = iota

// daySession is the per-token view state.
type daySession struct {
	tracker    *session.Tracker
	controller *view.Controller
}

// withSession resolves the session cookie into claims on the request
// context. An unusable cookie is cleared and the request continues signed out.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.resolveToken(r.Context(), cookie.Value)
		if err != nil {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSession).DebugContext(r.Context(), "Session cookie rejected",
				applog.FieldError, err)
			clearSessionCookie(w, r)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) resolveToken(ctx context.Context, raw string) (session.Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return session.Claims{}, err
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return session.Claims{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return session.Claims{}, session.ErrRevokedToken
	}
	return claims, nil
}

func claimsFrom(ctx context.Context) (session.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(session.Claims)
	return c, ok
}

// requireSession answers anonymous requests with the sign-in notice and
// hands signed-in ones the session's controller.
func (s *Server) requireSession(next func(http.ResponseWriter, *http.Request, *view.Controller)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r.Context())
		if !ok {
			msg := view.MessageFor(view.ErrNotSignedIn)
			ErrorResponse(http.StatusUnauthorized, msg).
				NotifyError(msg).
				Write(w)
			return
		}
		ctrl, _ := s.controllerFor(r.Context(), claims)
		next(w, r, ctrl)
	}
}

// controllerFor returns the session's controller, creating it on first use.
// A new controller loads today's activities before it is returned.
func (s *Server) controllerFor(ctx context.Context, claims session.Claims) (*view.Controller, bool) {
	created := false
	ds := s.sessions.GetOrCreate(claims.TokenID, func() *daySession {
		created = true
		tracker := session.NewTracker()
		logger := s.logger.WithComponent(applog.ComponentView).With(applog.FieldUserID, claims.Identity.ID)
		return &daySession{
			tracker:    tracker,
			controller: view.NewController(s.activities, tracker, core.Today(), logger.Logger),
		}
	})
	ds.tracker.Set(ctx, claims.Identity)
	return ds.controller, created
}

// startSession issues a token for id and stores it in the session cookie.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, id session.Identity) error {
	token, claims, err := s.tokens.Issue(id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
	applog.FromContext(r.Context()).WithComponent(applog.ComponentSession).InfoContext(r.Context(), "Session started",
		applog.FieldOperation, applog.OpSignIn,
		applog.FieldUserID, id.ID)
	return nil
}

// endSession revokes the current token and drops its controller.
func (s *Server) endSession(ctx context.Context, claims session.Claims) error {
	if ds, ok := s.sessions.Get(claims.TokenID); ok {
		ds.tracker.Clear(ctx)
		s.sessions.Delete(claims.TokenID)
	}
	if err := s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

// authFailure maps an authentication error to a status and a user message.
func authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password."
	case errors.Is(err, session.ErrInvalidEmail):
		return http.StatusUnprocessableEntity, "Enter a valid email address."
	case errors.Is(err, session.ErrWeakPassword):
		return http.StatusUnprocessableEntity, "Password must be at least 6 characters."
	case errors.Is(err, session.ErrEmailTaken):
		return http.StatusConflict, "That email is already registered."
	case errors.Is(err, session.ErrFederatedUnavailable):
		return http.StatusServiceUnavailable, "Google sign-in is not available."
	default:
		return http.StatusInternalServerError, "Sign-in failed. Try again."
	}
}
