package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"daylog/internal/cache"
	"daylog/internal/days"
	applog "daylog/internal/log"
	"daylog/internal/middleware/ratelimit"
	"daylog/internal/middleware/security"
	"daylog/internal/middleware/trace"
	"daylog/internal/session"
	appweb "daylog/web"
)

// ActivityStore is the day store the server drives. services.ActivityService
// satisfies it.
type ActivityStore interface {
	days.Store
	Categories(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators of the HTTP server.
type Dependencies struct {
	Activities  ActivityStore
	Auth        *session.Authenticator
	Tokens      *session.Tokens
	Revocations session.Revocations
	Logger      *applog.Logger

	// GoogleClientID enables the Google sign-in button when set.
	GoogleClientID      string
	RateLimitPerMinute  int
	ControllerCacheSize int
}

// Server serves the day view and its htmx partials.
type Server struct {
	http.Server
	templates   *template.Template
	logger      *applog.Logger
	activities  ActivityStore
	auth        *session.Authenticator
	tokens      *session.Tokens
	revocations session.Revocations
	googleID    string

	// One view controller per session token.
	sessions *cache.LRUCache[*daySession]

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	startedAt        time.Time
}

var templateFuncs = template.FuncMap{
	"percent": func(d decimal.Decimal) string { return d.StringFixed(1) },
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	cacheSize := deps.ControllerCacheSize
	if cacheSize <= 0 {
		cacheSize = 500
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:           logger.WithComponent(applog.ComponentHTTP),
		activities:       deps.Activities,
		auth:             deps.Auth,
		tokens:           deps.Tokens,
		revocations:      deps.Revocations,
		googleID:         deps.GoogleClientID,
		sessions:         cache.NewLRUCache[*daySession](cacheSize, deps.Tokens.TTL()),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		securityDetector: security.NewDetector(),
		startedAt:        time.Now(),
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	t, err := template.New("daylog").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.CacheFor(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /{$}", s.handleIndex)
	authLog := applog.ComponentMiddleware(applog.ComponentSession)
	mux.Handle("POST /auth/signin", authLog(http.HandlerFunc(s.handleSignIn)))
	mux.Handle("POST /auth/signup", authLog(http.HandlerFunc(s.handleSignUp)))
	mux.Handle("POST /auth/google", authLog(http.HandlerFunc(s.handleGoogleSignIn)))
	mux.Handle("POST /auth/signout", authLog(http.HandlerFunc(s.handleSignOut)))

	mux.HandleFunc("GET /ui/day", s.requireSession(s.handleChangeDate))
	mux.HandleFunc("POST /activities", s.requireSession(s.handleAddActivity))
	mux.HandleFunc("DELETE /activities/{id}", s.requireSession(s.handleDeleteActivity))
	mux.HandleFunc("POST /activities/{id}", s.requireSession(s.handleDeleteActivity))
	mux.HandleFunc("GET /ui/analysis", s.requireSession(s.handleOpenAnalysis))
	mux.HandleFunc("POST /ui/analysis/close", s.requireSession(s.handleCloseAnalysis))
	mux.HandleFunc("GET /api/analysis/charts", s.requireSession(s.handleCharts))

	headers := security.NewHeaders(security.DefaultPolicy())
	limit := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "Too many requests. Try again in a minute.").
			NotifyError("Too many requests. Try again in a minute.").
			Write(w)
	})

	s.Handler = s.traceMiddleware.Middleware(
		s.securityDetector.Middleware(
			headers.Middleware(
				limit(
					s.withSession(mux)))))

	return s
}

// Caches returns the server's expiring caches for periodic cleanup.
func (s *Server) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.sessions, s.rateLimiter}
}
