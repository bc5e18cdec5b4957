package http

import (
	"errors"
	"net/http"
	"strings"

	"daylog/internal/days"
	"daylog/internal/view"
)

// statusFor maps a controller error to the response status. nil is 200.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, view.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, days.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, days.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, days.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
