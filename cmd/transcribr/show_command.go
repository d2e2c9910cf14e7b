package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var withTranscript bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job's record and artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			detail, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch job: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job:     %s\n", detail.ID)
			fmt.Fprintf(out, "Status:  %s\n", detail.Status)
			fmt.Fprintf(out, "Created: %s\n", detail.CreatedAt)
			fmt.Fprintf(out, "Updated: %s\n", detail.UpdatedAt)
			fmt.Fprintf(out, "Video:   %s\n", detail.VideoFilename)
			fmt.Fprintf(out, "Audio:   %s\n", detail.AudioFilename)
			if detail.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:   %s\n", detail.ErrorMessage)
			}

			if len(detail.Screenshots) > 0 {
				rows := make([][]string, 0, len(detail.Screenshots))
				for _, shot := range detail.Screenshots {
					rows = append(rows, []string{
						shot.Filename,
						fmt.Sprintf("%.0fs", shot.Seconds),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Screenshot", "Position"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
			}

			if withTranscript && detail.Transcript != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, detail.Transcript)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&withTranscript, "transcript", "t", false, "Print the transcript text")
	return cmd
}
