// Package migrations embeds the SQLite schema migrations applied at startup.
package migrations

import "embed"

// FS holds the embedded *.up.sql and *.down.sql files.
//
//go:embed *.sql
var FS embed.FS
