package migrations

import "github.com/uptrace/bun/migrate"

// Migrations collects every schema step; each file registers itself by name.
var Migrations = migrate.NewMigrations()
