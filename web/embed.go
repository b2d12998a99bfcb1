// Package web embeds the HTML views and static assets served by the blog.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS

//go:embed static
var Static embed.FS
