// Package sql embeds the schema migrations and the statements the
// store executes. Keeping SQL in .sql files keeps it runnable in psql
// as-is.
package sql

import "embed"

//go:embed migrations
var Migrations embed.FS
