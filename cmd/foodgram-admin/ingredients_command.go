package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pakodev28/foodgram-project-react/internal/service"
)

type loadSummary struct {
	Created    int
	Duplicates []string
	Rejected   []string
}

func newLoadIngredientsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load-ingredients <csv>",
		Short: "Import ingredients from a name,measurement_unit CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer file.Close()

			summary, err := loadIngredients(cmd.Context(), service.NewIngredientService(db), file)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range summary.Duplicates {
				fmt.Fprintf(out, "%s already exists\n", name)
			}
			for _, msg := range summary.Rejected {
				fmt.Fprintf(out, "skipped: %s\n", msg)
			}
			fmt.Fprintf(out, "Created %d ingredients (%d duplicates, %d rejected)\n",
				summary.Created, len(summary.Duplicates), len(summary.Rejected))
			return nil
		},
	}
}

// loadIngredients reads name,unit rows and get-or-creates each ingredient.
// Duplicates and invalid rows are reported and skipped.
func loadIngredients(ctx context.Context, ingredients *service.IngredientService, r io.Reader) (loadSummary, error) {
	var summary loadSummary
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return summary, nil
		}
		if err != nil {
			return summary, fmt.Errorf("read csv: %w", err)
		}
		if len(record) != 2 {
			summary.Rejected = append(summary.Rejected, fmt.Sprintf("line %d: expected 2 columns, got %d", line, len(record)))
			continue
		}
		name, unit := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])

		ingredient, created, err := ingredients.GetOrCreateIngredient(ctx, name, unit)
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				summary.Rejected = append(summary.Rejected, fmt.Sprintf("line %d: %v", line, verr))
				continue
			}
			return summary, err
		}
		if created {
			summary.Created++
		} else {
			summary.Duplicates = append(summary.Duplicates, ingredient.Name)
		}
	}
}

func newIngredientsCommand(ctx *commandContext) *cobra.Command {
	ingredientsCmd := &cobra.Command{
		Use:   "ingredients",
		Short: "Inspect the ingredient catalog",
	}

	var nameFilter string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List ingredients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			items, err := service.NewIngredientService(db).ListIngredients(cmd.Context(), nameFilter)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No ingredients")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{item.ID.String(), item.Name, item.MeasurementUnit})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Unit"}, rows))
			return nil
		},
	}
	listCmd.Flags().StringVar(&nameFilter, "name", "", "Only show ingredients whose name contains this text")

	ingredientsCmd.AddCommand(listCmd)
	return ingredientsCmd
}
