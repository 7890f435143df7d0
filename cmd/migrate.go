package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cppla/cracker/utils"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			// bootstrap migrates on open
			_, db, _, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeDB(db)
			utils.Sugar.Info("database schema is up to date")
			return nil
		},
	}
}
