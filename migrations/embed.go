// Package migrations holds the per-dialect schema migrations compiled into the binary.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
