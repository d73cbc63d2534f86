// Package migrations embeds the database schemas so binaries do not depend on
// the working directory.
package migrations

import "embed"

// Postgres holds golang-migrate files under postgres/.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLiteSchema is applied as-is when an SQLite database is opened.
//
//go:embed sqlite/schema.sql
var SQLiteSchema string
