package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/clash-cost/internal/cli"
	"github.com/Veraticus/clash-cost/internal/config"
	"github.com/Veraticus/clash-cost/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates on startup; use --status to inspect the
schema without changing it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statusOnly, _ := cmd.Flags().GetBool("status")

			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			if statusOnly {
				current, err := store.SchemaVersion(cmd.Context())
				if err != nil {
					return err
				}
				printLine(cmd, fmt.Sprintf("Database: %s", cfg.DatabasePath))
				printLine(cmd, fmt.Sprintf("Schema version: %d (latest %d)", current, storage.ExpectedSchemaVersion))
				return nil
			}

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			printLine(cmd, cli.FormatSuccess("Database migrations completed"))
			return nil
		},
	}
	cmd.Flags().Bool("status", false, "show the current schema version without applying changes")
	return cmd
}
