// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Handlers get already-trimmed and sanitized values and a ready error response
// when the request cannot be read.

package http

import (
	"net/http"
	"net/url"
	"strings"
)

// maxFormBytes caps form bodies. Activity and credential forms are tiny.
const maxFormBytes = 16 << 10

// ActivityForm is the add-activity form. Minutes stays raw so the
// controller applies its own parsing and validation order.
type ActivityForm struct {
	Title    string
	Category string
	Minutes  string
}

// CredentialsForm is the sign-in and sign-up form.
type CredentialsForm struct {
	Email    string
	Password string
	Name     string
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(nil, r.Body, maxFormBytes)
	}
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}

// ParseActivityForm reads the add-activity form.
func ParseActivityForm(r *http.Request) (ActivityForm, *HTMXResponseBuilder) {
	if fail := ParseFormOrFail(r); fail != nil {
		return ActivityForm{}, fail
	}
	return ActivityForm{
		Title:    sanitizeInput(r.PostForm.Get("title")),
		Category: sanitizeInput(r.PostForm.Get("category")),
		Minutes:  strings.TrimSpace(r.PostForm.Get("minutes")),
	}, nil
}

// ParseCredentialsForm reads the sign-in and sign-up form. The password is
// passed through untouched.
func ParseCredentialsForm(r *http.Request) (CredentialsForm, *HTMXResponseBuilder) {
	if fail := ParseFormOrFail(r); fail != nil {
		return CredentialsForm{}, fail
	}
	return CredentialsForm{
		Email:    sanitizeInput(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
		Name:     sanitizeInput(r.PostForm.Get("name")),
	}, nil
}

// ParseDateQuery returns the raw date parameter, or false when it is absent.
func ParseDateQuery(query url.Values) (string, bool) {
	v := strings.TrimSpace(query.Get("date"))
	return v, v != ""
}
