package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the pipeline for every user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		stats, err := env.Batch.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "batch run")
		}

		zap.L().Info("batch finished",
			zap.Int("users_processed", stats.UsersProcessed),
			zap.Int("users_failed", stats.UsersFailed),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
}
