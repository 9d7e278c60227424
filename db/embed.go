package db

import "embed"

// Migrations holds the goose SQL migrations applied by leavectl migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
