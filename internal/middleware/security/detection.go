// Package security holds the request screening and response header
// middlewares that sit in front of the day view.
package security

import (
	"net/http"
	"net/netip"
	"strings"

	applog "daylog/internal/log"
	"daylog/internal/observability"
)

// maxURLLength flags overlong request URLs.
const maxURLLength = 2048

// check inspects one aspect of a request and returns a reason when it looks
// like probing. block refuses the request instead of only logging it.
type check struct {
	block bool
	fn    func(r *http.Request) string
}

func containsAny(kind, s string, needles []string) string {
	s = strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(s, n) {
			return kind + ":" + n
		}
	}
	return ""
}

var probes = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin",
	"admin.php", "config.php", ".git", ".ssh",
	"eval(", "javascript:", "<script", "union select",
	"etc/passwd", "cmd.exe",
}

var checks = []check{
	{fn: func(r *http.Request) string { return containsAny("path", r.URL.Path, probes) }},
	{fn: func(r *http.Request) string { return containsAny("query", r.URL.RawQuery, probes) }},
	{fn: func(r *http.Request) string {
		return containsAny("agent", r.UserAgent(), []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab"})
	}},
	{block: true, fn: func(r *http.Request) string {
		switch r.Method {
		case "TRACE", "TRACK", "DEBUG", "CONNECT":
			return "method:" + r.Method
		}
		return ""
	}},
	{fn: func(r *http.Request) string {
		if len(r.URL.String()) > maxURLLength {
			return "url_length"
		}
		return ""
	}},
	{fn: func(r *http.Request) string {
		if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5 {
			return "forwarded_hops"
		}
		return ""
	}},
}

// Detector flags requests that look like probing and resolves client IPs
// behind trusted proxies.
type Detector struct {
	trusted []netip.Prefix
}

// NewDetector trusts loopback and the private ranges as proxies.
func NewDetector() *Detector {
	return &Detector{trusted: []netip.Prefix{
		netip.MustParsePrefix("127.0.0.0/8"),
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("172.16.0.0/12"),
		netip.MustParsePrefix("192.168.0.0/16"),
		netip.MustParsePrefix("::1/128"),
	}}
}

// Reason describes why a request was flagged. Empty means clean.
func (d *Detector) Reason(r *http.Request) string {
	reason, _ := d.inspect(r)
	return reason
}

func (d *Detector) inspect(r *http.Request) (reason string, block bool) {
	for _, c := range checks {
		if reason := c.fn(r); reason != "" {
			return reason, c.block
		}
	}
	return "", false
}

// Middleware logs suspicious requests and refuses the blocked kinds
// outright. Everything else continues.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason, block := d.inspect(r)
		if reason == "" {
			next.ServeHTTP(w, r)
			return
		}

		observability.RecordSuspiciousRequest()
		applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).WarnContext(r.Context(),
			"Suspicious request",
			"reason", reason,
			"blocked", block,
			applog.FieldClientIP, d.ExtractClientIP(r),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)

		if block {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ExtractClientIP returns the peer address, or the first forwarded address
// when the peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	peer, err := netip.ParseAddrPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	addr := peer.Addr().Unmap()
	if !d.trustedPeer(addr) {
		return addr.String()
	}

	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	if fwd, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
		return fwd.String()
	}
	if xri, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xri.String()
	}
	return addr.String()
}

func (d *Detector) trustedPeer(addr netip.Addr) bool {
	for _, p := range d.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
