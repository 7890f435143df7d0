// Package cmd holds the cracker command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/cppla/cracker/config"
	"github.com/cppla/cracker/models"
	"github.com/cppla/cracker/store"
	"github.com/cppla/cracker/utils"
)

// Version is overridden at build time.
var Version = "dev"

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cracker",
		Short: "Christmas Cracker habit tracker",
		Long: `cracker serves the Christmas Cracker API: daily habit checklists,
streaks and a shared leaderboard.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if configPath != "" {
				config.DefaultPath = configPath
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (JSON)")

	cmd.AddCommand(newServeCmd(), newMigrateCmd(), newRecomputeCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cracker version %s\n", Version)
		},
	})
	return cmd
}

// bootstrap loads config, starts logging and opens the migrated database.
func bootstrap() (config.AppConfig, *gorm.DB, *store.Store, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return cfg, nil, nil, err
	}
	if err := utils.InitLogger(cfg); err != nil {
		return cfg, nil, nil, err
	}
	db, err := config.InitDatabase(cfg, models.All()...)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, db, store.New(db, store.PolicyFromConfig(cfg)), nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = utils.Logger.Sync()
}
