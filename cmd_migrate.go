package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coreybb/fabula/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the stories and chapters tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.Driver == config.DriverMemory {
			return fmt.Errorf("the %s driver has no schema to migrate", config.DriverMemory)
		}

		db, err := openDatabase(cmd.Context(), cfg.Database)
		if err != nil {
			return fmt.Errorf("database setup failed: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(cmd.Context()); err != nil {
			return err
		}
		logger.Info("Migration complete", zap.String("driver", db.Driver()))
		return nil
	},
}
