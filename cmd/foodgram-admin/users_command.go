package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pakodev28/foodgram-project-react/internal/service"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Administer user accounts",
	}

	usersCmd.AddCommand(&cobra.Command{
		Use:   "promote <email>",
		Short: "Grant admin rights to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			user, err := service.NewUserService(db).Promote(cmd.Context(), args[0])
			if errors.Is(err, service.ErrNotFound) {
				return fmt.Errorf("no user with email %s", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", user.Username)
			return nil
		},
	})

	return usersCmd
}
