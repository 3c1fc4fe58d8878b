// Package clientportal embeds the web frontend served by cmd/portal.
package clientportal

import "embed"

//go:embed web
var WebFS embed.FS
