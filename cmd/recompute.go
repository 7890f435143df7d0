package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cppla/cracker/utils"
)

func newRecomputeCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild every leaderboard entry from progress history",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, s, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeDB(db)

			start := time.Now()
			n, err := s.RecomputeAll(cmd.Context(), concurrency)
			if err != nil {
				return err
			}
			utils.InvalidateByPrefix(cmd.Context(), "cache:leaderboard:")
			utils.Sugar.Infow("leaderboard recomputed", "users", n, "elapsed", time.Since(start))
			fmt.Fprintf(cmd.OutOrStdout(), "recomputed %d users\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "users recomputed in parallel")
	return cmd
}
