package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runUserID string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline for a single user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		user, err := env.Store.GetUser(ctx, runUserID)
		if err != nil {
			return eris.Wrap(err, "get user")
		}

		acquired, err := env.Store.AcquireRunLock(ctx, user.ID)
		if err != nil {
			return eris.Wrap(err, "acquire run lock")
		}
		if !acquired {
			return eris.Errorf("a run is already in progress for user %s", user.ID)
		}
		defer func() {
			if err := env.Store.ReleaseRunLock(ctx, user.ID); err != nil {
				zap.L().Error("release run lock", zap.Error(err))
			}
		}()

		stats, err := env.Runner.Run(ctx, *user)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("run complete",
			zap.String("user_id", user.ID),
			zap.String("state", string(stats.State)),
			zap.Int("created", stats.Created),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	runCmd.Flags().StringVar(&runUserID, "user", "", "user ID (required)")
	_ = runCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(runCmd)
}
