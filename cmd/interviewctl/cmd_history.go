package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/terra-clan/interview-console/internal/models"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List your past interviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := opts.client()
			if err != nil {
				return err
			}
			interviews, err := api.GetInterviewHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
			renderInterviews(cmd.OutOrStdout(), interviews, false)
			return nil
		},
	}
}

// renderInterviews lists interviews; withOwner adds the candidate column
func renderInterviews(out io.Writer, interviews []models.Interview, withOwner bool) {
	if len(interviews) == 0 {
		fmt.Fprintln(out, "No interviews yet.") //nolint:errcheck
		return
	}

	header := []string{"ID", "ROLE", "TYPE", "SKILLS", "MINUTES", "STATUS", "CREATED"}
	if withOwner {
		header = append(header, "CANDIDATE")
	}
	t := newTable(header...)

	for _, iv := range interviews {
		status := "in progress"
		if iv.IsCompleted() {
			status = "completed"
		}
		row := []string{
			strconv.FormatInt(iv.ID, 10),
			iv.Role,
			iv.InterviewType,
			iv.Skills,
			strconv.Itoa(iv.InterviewDurationMinutes),
			status,
			iv.CreatedAt,
		}
		if withOwner {
			owner := ""
			if iv.User != nil {
				owner = iv.User.FullName
				if owner == "" {
					owner = iv.User.PhoneNumber
				}
			}
			row = append(row, owner)
		}
		t.add(row...)
	}
	t.render(out)
}
