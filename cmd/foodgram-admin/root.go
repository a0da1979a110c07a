package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var migrationsFlag string

	ctx := newCommandContext(&migrationsFlag)

	rootCmd := &cobra.Command{
		Use:           "foodgram-admin",
		Short:         "Foodgram maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&migrationsFlag, "migrations", "", "Directory of SQL migrations (defaults to MIGRATIONS_DIR)")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newLoadIngredientsCommand(ctx))
	rootCmd.AddCommand(newIngredientsCommand(ctx))
	rootCmd.AddCommand(newTagsCommand(ctx))
	rootCmd.AddCommand(newUsersCommand(ctx))
	rootCmd.AddCommand(newStorageCommand(ctx))

	return rootCmd
}
