// Package web carries the embedded browser frontend.
package web

import "embed"

//go:embed static
var StaticFS embed.FS
