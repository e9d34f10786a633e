// Package web embeds the portal's single-page form UI.
package web

import "embed"

// Assets holds the files under static/.
//
//go:embed static
var Assets embed.FS
