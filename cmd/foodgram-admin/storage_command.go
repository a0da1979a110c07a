package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pakodev28/foodgram-project-react/config"
)

func newStorageCommand(ctx *commandContext) *cobra.Command {
	storageCmd := &cobra.Command{
		Use:   "storage",
		Short: "Manage image storage",
	}

	storageCmd.AddCommand(&cobra.Command{
		Use:   "setup-bucket",
		Short: "Allow public reads of recipe images in the S3 bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.S3BucketName == "" {
				return errors.New("S3_BUCKET_NAME is not set; images are stored in " + cfg.MediaDir)
			}
			s3Config, err := config.NewS3Config(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if err := s3Config.SetupBucketPolicy(cmd.Context()); err != nil {
				return fmt.Errorf("apply bucket policy: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bucket %s is publicly readable\n", cfg.S3BucketName)
			return nil
		},
	})

	return storageCmd
}
