// Package appfs embeds the templates, fixtures and migrations shipped with the binary.
package appfs

import "embed"

//go:embed all:templates fixtures migrations
var FS embed.FS
