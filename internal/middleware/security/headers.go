package security

import (
	"net/http"
	"strconv"
	"strings"
)

// Policy is the set of response headers sent with every page and partial.
// Empty fields are not sent.
type Policy struct {
	ContentSecurity []string

	// HSTS is only sent over TLS.
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	FrameOptions       string
	ReferrerPolicy     string
	Permissions        string
	OpenerPolicy       string
	ResourcePolicy     string
	DefaultCacheHeader string
}

// DefaultPolicy allows htmx and Chart.js from unpkg/jsdelivr and the Google
// Identity Services button. Day panels carry per-user data, so responses are
// not cached unless a route says otherwise.
func DefaultPolicy() Policy {
	const gsi = "https://accounts.google.com/gsi/"
	return Policy{
		ContentSecurity: []string{
			"default-src 'self'",
			"script-src 'self' https://unpkg.com https://cdn.jsdelivr.net " + gsi + "client",
			"style-src 'self' 'unsafe-inline' " + gsi + "style",
			"img-src 'self' data:",
			"connect-src 'self' " + gsi,
			"frame-src " + gsi,
			"object-src 'none'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self'",
		},
		HSTSMaxAge:            365 * 24 * 60 * 60,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		Permissions:           "geolocation=(), microphone=(), camera=(), payment=()",
		// The Google sign-in popup posts back to its opener.
		OpenerPolicy:       "same-origin-allow-popups",
		ResourcePolicy:     "same-origin",
		DefaultCacheHeader: "no-store",
	}
}

// Headers writes a Policy onto responses. The header block is rendered once.
type Headers struct {
	fixed http.Header
	hsts  string
}

func NewHeaders(p Policy) *Headers {
	h := &Headers{fixed: http.Header{}}
	add := func(name, value string) {
		if value != "" {
			h.fixed.Set(name, value)
		}
	}
	add("X-Content-Type-Options", "nosniff")
	add("Content-Security-Policy", strings.Join(p.ContentSecurity, "; "))
	add("X-Frame-Options", p.FrameOptions)
	add("Referrer-Policy", p.ReferrerPolicy)
	add("Permissions-Policy", p.Permissions)
	add("Cross-Origin-Opener-Policy", p.OpenerPolicy)
	add("Cross-Origin-Resource-Policy", p.ResourcePolicy)
	add("Cache-Control", p.DefaultCacheHeader)

	if p.HSTSMaxAge > 0 {
		h.hsts = "max-age=" + strconv.Itoa(p.HSTSMaxAge)
		if p.HSTSIncludeSubdomains {
			h.hsts += "; includeSubDomains"
		}
	}
	return h
}

func (h *Headers) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dst := w.Header()
		for name, values := range h.fixed {
			dst[name] = values
		}
		if r.TLS != nil && h.hsts != "" {
			dst.Set("Strict-Transport-Security", h.hsts)
		}
		next.ServeHTTP(w, r)
	})
}

// CacheFor lets a route's responses be cached publicly for maxAge seconds,
// replacing the policy default.
func CacheFor(maxAge int) func(http.Handler) http.Handler {
	value := "public, max-age=" + strconv.Itoa(maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}
