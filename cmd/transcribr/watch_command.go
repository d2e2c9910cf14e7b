package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"transcribr/internal/progress"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Stream a job's progress messages until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			return client.Watch(cmd.Context(), args[0], func(event progress.Event) {
				fmt.Fprintln(out, event.Message)
			})
		},
	}
}
