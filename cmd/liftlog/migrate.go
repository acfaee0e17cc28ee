package main

import (
	"fmt"

	"github.com/claude/liftlog/internal/storage"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if err := storage.RunMigrations(cfg.Storage.EntityPath()); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
		log.Info("migrations applied", "path", cfg.Storage.EntityPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
