// Package migrations embeds the versioned postgres schema.
package migrations

import "embed"

// FS holds NNNN_name.sql files and their NNNN_name_rollback.sql counterparts.
//
//go:embed *.sql
var FS embed.FS
