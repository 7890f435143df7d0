package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cppla/cracker/routes"
	"github.com/cppla/cracker/utils"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, s, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeDB(db)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			r := routes.SetupRouter(s)
			utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
			return utils.GraceServer(ctx, ":"+cfg.AppPort, r)
		},
	}
}
