package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"transcribr/internal/progress"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "submit <video> <audio>",
		Short: "Upload a video and its audio track for processing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoPath, audioPath := args[0], args[1]
			for _, path := range []string{videoPath, audioPath} {
				info, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("read input %q: %w", path, err)
				}
				if info.IsDir() {
					return errors.New("inputs must be files, not directories")
				}
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}

			job, err := client.Submit(cmd.Context(), videoPath, audioPath)
			if err != nil {
				return fmt.Errorf("submit job: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Submitted job %s (%s)\n", job.ID, job.Status)

			if !follow {
				return nil
			}
			return client.Watch(cmd.Context(), job.ID, func(event progress.Event) {
				fmt.Fprintln(out, event.Message)
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream progress until the job finishes")
	return cmd
}
