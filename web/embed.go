// Package web ships the page templates and browser assets inside the binary.
package web

import "embed"

// TemplatesFS holds the page and the day panel, sign-in and analysis
// partials.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds app.js and the stylesheet served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
