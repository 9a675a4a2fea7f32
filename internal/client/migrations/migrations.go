// Package migrations embeds the goose migrations of the upload journal. The
// statements are portable between SQLite and PostgreSQL.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
