// Package assets embeds files the server needs at runtime.
package assets

import "embed"

// Migrations holds the archive schema, applied in lexical order by
// internal/history.
//
//go:embed sql/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that holds the scripts.
const MigrationsDir = "sql"
