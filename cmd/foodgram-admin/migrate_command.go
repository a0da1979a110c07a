package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pakodev28/foodgram-project-react/internal/database"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			applied, err := database.AppliedMigrations(db)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if db.Dialector.Name() == "sqlite" {
				fmt.Fprintln(out, "Schema migrated from models")
				return nil
			}
			fmt.Fprintf(out, "Applied migrations: %d\n", len(applied))
			for _, name := range applied {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}
