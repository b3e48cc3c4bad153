package web

import "embed"

// TemplatesFS embeds the page layout, views and partials.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet and the progressive-enhancement script.
//
//go:embed static/*
var StaticFS embed.FS
