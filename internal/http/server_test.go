package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daylog/internal/core"
	"daylog/internal/days/memory"
	"daylog/internal/services"
	"daylog/internal/session"
	"daylog/internal/view"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv := NewServer(":0", Dependencies{
		Activities:         services.NewActivityService(memory.New(nil)),
		Auth:               session.NewAuthenticator(session.NewMemoryAccounts(), nil),
		Tokens:             session.NewTokens(session.TokenConfig{Secret: "test-secret-0123456789", Issuer: "daylog"}),
		Revocations:        session.NewMemoryRevocations(),
		RateLimitPerMinute: 1000,
	})
	require.NotNil(t, srv.templates, "templates must parse")
	return srv
}

func do(t *testing.T, srv *Server, method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("HX-Request", "true")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", sessionCookie)
	return nil
}

func signUp(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/auth/signup", url.Values{
		"email":    {"ada@example.com"},
		"password": {"analytical"},
		"name":     {"Ada"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
	return sessionCookieFrom(t, rec)
}

var deleteTarget = regexp.MustCompile(`hx-delete="/activities/([^"]+)"`)

func TestIndexAnonymousShowsSignIn(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign in")
	assert.NotContains(t, rec.Body.String(), `id="day-panel"`)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = do(t, srv, http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodGet, "/healthz", nil, nil)

	rec := do(t, srv, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "daylog_http_request_duration_seconds")
}

func TestAnonymousActionsNeedLogin(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct{ method, target string }{
		{http.MethodPost, "/activities"},
		{http.MethodDelete, "/activities/abc"},
		{http.MethodGet, "/ui/day?date=2024-05-06"},
		{http.MethodGet, "/ui/analysis"},
	} {
		rec := do(t, srv, tc.method, tc.target, url.Values{}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.target)
		assert.Contains(t, rec.Body.String(), "Please login first.", tc.target)
	}
}

func TestDayFlow(t *testing.T) {
	srv := newTestServer(t)
	cookie := signUp(t, srv)

	rec := do(t, srv, http.MethodGet, "/", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="day-panel"`)
	assert.Contains(t, rec.Body.String(), "Ada")

	rec = do(t, srv, http.MethodGet, "/ui/day?date=2024-05-06", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="2024-05-06"`)
	assert.Contains(t, rec.Body.String(), "1440 min")
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "day:changed")

	rec = do(t, srv, http.MethodPost, "/activities", url.Values{
		"title": {"Code"}, "category": {"Work"}, "minutes": {"90"},
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Code")
	assert.Contains(t, body, "1350 min")
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "form:reset")

	match := deleteTarget.FindStringSubmatch(body)
	require.Len(t, match, 2, "panel should list a delete button")
	id := match[1]

	rec = do(t, srv, http.MethodGet, "/ui/analysis", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="analysis"`)
	assert.Contains(t, rec.Body.String(), "Code — 90 min")
	assert.Contains(t, rec.Body.String(), "100.0%")

	rec = do(t, srv, http.MethodGet, "/api/analysis/charts", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var charts view.ChartSeries
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &charts))
	assert.Equal(t, []core.ChartPoint{{Label: "Work", Value: 90}}, charts.Pie)
	assert.Equal(t, []core.ChartPoint{{Label: "Code", Value: 90}}, charts.Bar)

	rec = do(t, srv, http.MethodPost, "/ui/analysis/close", url.Values{}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `id="analysis"`)

	rec = do(t, srv, http.MethodGet, "/api/analysis/charts", nil, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/activities/"+id, nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No activities for this day yet.")

	rec = do(t, srv, http.MethodDelete, "/activities/"+id, nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "That activity no longer exists.")
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "show-notification")

	rec = do(t, srv, http.MethodGet, "/ui/analysis", nil, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotContains(t, rec.Body.String(), `id="analysis"`)
}

func TestAddActivityValidation(t *testing.T) {
	srv := newTestServer(t)
	cookie := signUp(t, srv)
	do(t, srv, http.MethodGet, "/ui/day?date=2024-05-06", nil, cookie)

	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{"blank title wins", url.Values{"title": {"  "}, "minutes": {"abc"}}, "Enter a title"},
		{"malformed minutes", url.Values{"title": {"Read"}, "minutes": {"12abc"}}, "Minutes must be positive"},
		{"zero minutes", url.Values{"title": {"Read"}, "minutes": {"0"}}, "Minutes must be positive"},
		{"over budget", url.Values{"title": {"Sleep"}, "minutes": {"1441"}}, "You cannot exceed 1440 minutes per day"},
		{"title too long", url.Values{"title": {strings.Repeat("a", core.MaxTitleLength+1)}, "minutes": {"10"}}, "Titles can be at most 200 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/activities", tt.form, cookie)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.Contains(t, rec.Body.String(), "No activities for this day yet.")
		})
	}

	rec := do(t, srv, http.MethodPost, "/activities", url.Values{"title": {"Sleep"}, "category": {"Sleep"}, "minutes": {"1440"}}, cookie)
	assert.Equal(t, http.StatusOK, rec.Code, "the full budget is allowed")
}

func TestChangeDateRejectsInvalidDate(t *testing.T) {
	srv := newTestServer(t)
	cookie := signUp(t, srv)

	rec := do(t, srv, http.MethodGet, "/ui/day?date=2024-13-01", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "Enter a valid date.")
}

func TestSignInErrors(t *testing.T) {
	srv := newTestServer(t)
	signUp(t, srv)

	rec := do(t, srv, http.MethodPost, "/auth/signin", url.Values{
		"email": {"ada@example.com"}, "password": {"wrong-password"},
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password.")

	rec = do(t, srv, http.MethodPost, "/auth/signup", url.Values{
		"email": {"bob@example.com"}, "password": {"123"},
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password must be at least 6 characters.")

	rec = do(t, srv, http.MethodPost, "/auth/signup", url.Values{
		"email": {"ada@example.com"}, "password": {"another-one"},
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodPost, "/auth/signin", url.Values{
		"email": {"ada@example.com"}, "password": {"analytical"},
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	sessionCookieFrom(t, rec)
}

func TestSignOutRevokesSession(t *testing.T) {
	srv := newTestServer(t)
	cookie := signUp(t, srv)

	rec := do(t, srv, http.MethodPost, "/auth/signout", url.Values{}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
	assert.Equal(t, 0, srv.sessions.Size())

	rec = do(t, srv, http.MethodPost, "/activities", url.Values{"title": {"x"}, "minutes": {"5"}}, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGoogleSignInRequiresCSRFToken(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/auth/google", url.Values{"credential": {"token"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Google sign-in could not be verified.")
}

func TestGoogleSignInUnavailableWithoutVerifier(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/google",
		strings.NewReader(url.Values{"credential": {"token"}, "g_csrf_token": {"abc"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: googleCSRFCookie, Value: "abc"})
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Google sign-in is not available.")
}
