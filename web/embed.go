// Package web embeds the single-page UI served at the root route.
package web

import "embed"

//go:embed index.html
var Content embed.FS
