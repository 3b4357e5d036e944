// Package web holds the embedded server-rendered pages.
package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS
