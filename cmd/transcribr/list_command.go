package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all jobs known to the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			jobsList, err := client.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list jobs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(jobsList) == 0 {
				fmt.Fprintln(out, "No jobs.")
				return nil
			}

			rows := make([][]string, 0, len(jobsList))
			for _, job := range jobsList {
				rows = append(rows, []string{
					job.ID,
					job.Status,
					job.CreatedAt,
					job.VideoFilename,
					strconv.Itoa(len(job.Screenshots)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Status", "Created", "Video", "Shots"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}
