package main

import (
	"fmt"

	"go-leave/db"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

const migrationsTable = "schema_migrations"

var migrateCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
	"reset":   true,
	"redo":    true,
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version|reset|redo]",
		Short:     "Run the embedded goose migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status", "version", "reset", "redo"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}
			if !migrateCommands[command] {
				return fmt.Errorf("unknown migrate command %q", command)
			}

			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			sqlDB, err := goose.OpenDBWithDriver("pgx", cfg.DB.DSN())
			if err != nil {
				return fmt.Errorf("goose: open db: %w", err)
			}
			defer sqlDB.Close()

			goose.SetBaseFS(db.Migrations)
			goose.SetTableName(migrationsTable)
			if err := goose.SetDialect("postgres"); err != nil {
				return err
			}

			if err := goose.RunContext(cmd.Context(), command, sqlDB, db.MigrationsDir); err != nil {
				return fmt.Errorf("goose %s: %w", command, err)
			}
			return nil
		},
	}
}
