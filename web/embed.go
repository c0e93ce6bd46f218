package web

import "embed"

// StaticFS embeds the dashboard document and its assets.
//
//go:embed static
var StaticFS embed.FS
