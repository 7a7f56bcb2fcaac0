package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relaymind/autopilot/internal/model"
)

var (
	addUserEmail string
	addUserName  string
	addUserPrefs string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage tenant accounts",
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		user := &model.User{
			Email:       addUserEmail,
			Name:        addUserName,
			Preferences: addUserPrefs,
		}
		if err := st.CreateUser(ctx, user); err != nil {
			return eris.Wrap(err, "create user")
		}

		zap.L().Info("user created",
			zap.String("user_id", user.ID),
			zap.String("email", user.Email),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(user)
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered users",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		users, err := st.ListUsers(ctx)
		if err != nil {
			return eris.Wrap(err, "list users")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(users)
	},
}

func init() {
	usersAddCmd.Flags().StringVar(&addUserEmail, "email", "", "user email (required)")
	usersAddCmd.Flags().StringVar(&addUserName, "name", "", "display name")
	usersAddCmd.Flags().StringVar(&addUserPrefs, "preferences", "", "preferences JSON blob")
	_ = usersAddCmd.MarkFlagRequired("email")

	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersListCmd)
	rootCmd.AddCommand(usersCmd)
}
