// Command probationctl runs maintenance tasks against the probation database.
package main

import (
	"fmt"
	"os"

	"probation_app_go/config"
	"probation_app_go/db"
	"probation_app_go/logger"
	"probation_app_go/models"

	"github.com/spf13/cobra"
)

var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "probationctl",
	Short:         "Maintenance commands for the probation case manager",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if _, err := logger.Init(cfg.LogLevel, "console", "probationctl"); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		if err := db.Initialize(db.Options{
			Path:        cfg.DBPath,
			TursoURL:    cfg.TursoDatabaseURL,
			TursoToken:  cfg.TursoAuthToken,
			Environment: cfg.Environment,
		}); err != nil {
			return err
		}
		return db.AutoMigrate(models.All()...)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return db.Close()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(deactivateOfficerCmd)
	rootCmd.AddCommand(deleteUserCmd)
	rootCmd.AddCommand(seedCmd)
}

// migrateCmd does nothing beyond the migration every command already runs
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Migrations applied")
		return nil
	},
}
