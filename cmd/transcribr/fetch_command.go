package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <job-id>",
		Short: "Download a completed job's zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			client, err := ctx.client()
			if err != nil {
				return err
			}

			dest := strings.TrimSpace(output)
			if dest == "" {
				dest = fmt.Sprintf("transcribr_%s.zip", id)
			}

			if err := client.DownloadArchive(cmd.Context(), id, dest); err != nil {
				return fmt.Errorf("download archive: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination path for the archive")
	return cmd
}
