package db

import "embed"

// EmbedMigrations contains the metastore schema migrations.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS
