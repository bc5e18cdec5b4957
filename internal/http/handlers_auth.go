package http

import (
	"net/http"

	applog "daylog/internal/log"
	"daylog/internal/session"
)

// googleCSRFCookie is the double-submit token Google Identity Services
// sets alongside the redirect-mode credential post.
const googleCSRFCookie = "g_csrf_token"

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	form, fail := ParseCredentialsForm(r)
	if fail != nil {
		fail.Write(w)
		return
	}
	id, err := s.auth.SignIn(r.Context(), form.Email, form.Password)
	s.finishSignIn(w, r, id, err)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	form, fail := ParseCredentialsForm(r)
	if fail != nil {
		fail.Write(w)
		return
	}
	id, err := s.auth.SignUp(r.Context(), form.Email, form.Password, form.Name)
	s.finishSignIn(w, r, id, err)
}

func (s *Server) handleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	if fail := ParseFormOrFail(r); fail != nil {
		fail.Write(w)
		return
	}
	cookie, err := r.Cookie(googleCSRFCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.PostForm.Get(googleCSRFCookie) {
		s.renderPage(w, r, http.StatusBadRequest, pageData{
			GoogleClientID: s.googleID,
			AuthError:      "Google sign-in could not be verified.",
		})
		return
	}
	id, err := s.auth.SignInFederated(r.Context(), r.PostForm.Get("credential"))
	s.finishSignIn(w, r, id, err)
}

func (s *Server) finishSignIn(w http.ResponseWriter, r *http.Request, id session.Identity, err error) {
	if err == nil {
		err = s.startSession(w, r, id)
	}
	if err != nil {
		status, msg := authFailure(err)
		if status >= http.StatusInternalServerError {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Sign-in failed",
				applog.FieldOperation, applog.OpSignIn,
				applog.FieldError, err)
		}
		s.renderPage(w, r, status, pageData{GoogleClientID: s.googleID, AuthError: msg})
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if claims, ok := claimsFrom(r.Context()); ok {
		if err := s.endSession(r.Context(), claims); err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Sign-out failed",
				applog.FieldOperation, applog.OpSignOut,
				applog.FieldError, err)
		}
	}
	clearSessionCookie(w, r)
	redirectHome(w, r)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		NewHTMXResponse().Redirect("/").Write(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
