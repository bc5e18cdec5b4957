package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"daylog/internal/config"
	"daylog/internal/storage"
	"daylog/internal/storage/postgres"
)

func migrateCmd() *cobra.Command {
	var (
		rollback int
		status   bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations to the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			switch cfg.DataBackend {
			case "sqlite":
				switch {
				case status:
					version, dirty, err := storage.MigrationVersion(cfg.SQLiteDBPath)
					if err != nil {
						return err
					}
					fmt.Printf("sqlite schema version %d (dirty=%t)\n", version, dirty)
					return nil
				case rollback > 0:
					if err := storage.RollbackMigrations(cfg.SQLiteDBPath, rollback); err != nil {
						return err
					}
					fmt.Printf("Rolled back %d migration(s) on %s\n", rollback, cfg.SQLiteDBPath)
					return nil
				}
				if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
					return err
				}
				fmt.Printf("Migrated %s\n", cfg.SQLiteDBPath)
			case "postgres":
				if status || rollback > 0 {
					return fmt.Errorf("--status and --rollback are only supported for sqlite")
				}
				if cfg.PostgresURL == "" {
					return fmt.Errorf("POSTGRES_URL is required")
				}
				if err := postgres.RunMigrations(cfg.PostgresURL); err != nil {
					return err
				}
				fmt.Println("Migrated postgres")
			default:
				return fmt.Errorf("the %s backend has no schema", cfg.DataBackend)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&rollback, "rollback", 0, "roll back this many migrations (sqlite)")
	cmd.Flags().BoolVar(&status, "status", false, "print the current schema version (sqlite)")
	return cmd
}
