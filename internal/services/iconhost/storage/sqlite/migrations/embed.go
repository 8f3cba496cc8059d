package migrations

import "embed"

// FS contains embedded SQLite migrations for icon storage.
//
//go:embed *.sql
var FS embed.FS
