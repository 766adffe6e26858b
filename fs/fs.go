package appfs

import "embed"

// FS holds the embedded SQL migrations and email templates.
//
//go:embed migrations templates
var FS embed.FS
