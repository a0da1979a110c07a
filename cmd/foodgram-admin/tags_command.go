package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/pakodev28/foodgram-project-react/internal/service"
	"github.com/pakodev28/foodgram-project-react/internal/types"
)

// tagFile is the layout of a tag fixture:
//
//	[[tags]]
//	name = "Breakfast"
//	slug = "breakfast"
//	color = "#E26C2D"
type tagFile struct {
	Tags []tagEntry `toml:"tags"`
}

type tagEntry struct {
	Name  string `toml:"name"`
	Slug  string `toml:"slug"`
	Color string `toml:"color"`
}

func newTagsCommand(ctx *commandContext) *cobra.Command {
	tagsCmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage recipe tags",
	}
	tagsCmd.AddCommand(newTagsImportCommand(ctx))
	tagsCmd.AddCommand(newTagsListCommand(ctx))
	return tagsCmd
}

func newTagsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <toml>",
		Short: "Create or update tags from a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer file.Close()

			requests, err := parseTagFile(file)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			created, updated, err := importTags(cmd.Context(), service.NewTagService(db), requests)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tags created: %d, updated: %d\n", created, updated)
			return nil
		},
	}
}

// parseTagFile decodes and validates a tag fixture. Tags are checked with the
// same rules as POST /api/tags.
func parseTagFile(r io.Reader) ([]types.CreateTagRequest, error) {
	var parsed tagFile
	decoder := toml.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&parsed); err != nil {
		return nil, err
	}

	validate := validator.New()
	validate.SetTagName("binding")

	requests := make([]types.CreateTagRequest, 0, len(parsed.Tags))
	seen := make(map[string]bool)
	for i, entry := range parsed.Tags {
		req := types.CreateTagRequest{Name: entry.Name, Slug: entry.Slug, Color: entry.Color}
		if err := validate.Struct(req); err != nil {
			return nil, fmt.Errorf("tag %d: %w", i+1, err)
		}
		if seen[req.Slug] {
			return nil, fmt.Errorf("tag %d: duplicate slug %q", i+1, req.Slug)
		}
		seen[req.Slug] = true
		requests = append(requests, req)
	}
	return requests, nil
}

func importTags(ctx context.Context, tags *service.TagService, requests []types.CreateTagRequest) (created, updated int, err error) {
	for i := range requests {
		_, isNew, err := tags.UpsertTag(ctx, &requests[i])
		if err != nil {
			return created, updated, fmt.Errorf("tag %s: %w", requests[i].Slug, err)
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}
	return created, updated, nil
}

func newTagsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			tags, err := service.NewTagService(db).ListTags(cmd.Context())
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tags")
				return nil
			}
			rows := make([][]string, 0, len(tags))
			for _, tag := range tags {
				rows = append(rows, []string{tag.Slug, tag.Name, tag.Color})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Slug", "Name", "Color"}, rows))
			return nil
		},
	}
}
