package homepage

import "embed"

// EmbeddedAssets contains the static assets served under /assets/:
// site.css and site.js.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
