// Package migrations embeds the SQL migration files for bun's migrator
// (internal/infrastructure/storage.Migrator), grounded on the teacher's
// own cmd/migrate wiring (migrate.NewMigrations().Discover(migrations.FS)).
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
