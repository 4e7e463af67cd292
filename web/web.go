package web

import "embed"

// Views holds the HTML templates rendered by the handlers.
//
//go:embed views
var Views embed.FS
