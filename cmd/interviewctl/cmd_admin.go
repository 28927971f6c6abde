package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/terra-clan/interview-console/internal/auth"
)

func newAdminCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator console",
	}

	cmd.AddCommand(newAdminLoginCommand(opts))
	cmd.AddCommand(newAdminStatsCommand(opts))
	cmd.AddCommand(newAdminUsersCommand(opts))
	cmd.AddCommand(newAdminInterviewsCommand(opts))

	return cmd
}

func newAdminLoginCommand(opts *rootOptions) *cobra.Command {
	var phone, otp string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, store, err := opts.client()
			if err != nil {
				return err
			}
			flow := auth.NewFlow(api, store)
			if err := askCode(cmd, flow, &phone, &otp); err != nil {
				return err
			}
			if err := flow.AdminLogin(cmd.Context(), phone, otp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as administrator %s\n", phone) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&otp, "otp", "", "One-time code (skips sending a new one)")

	return cmd
}

func newAdminStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show usage totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := opts.client()
			if err != nil {
				return err
			}
			stats, err := api.GetAdminStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load stats: %w", err)
			}

			t := newTable("METRIC", "VALUE")
			t.add("Users", strconv.Itoa(stats.TotalUsers))
			t.add("Interviews", strconv.Itoa(stats.TotalInterviews))
			t.add("Completed", strconv.Itoa(stats.CompletedInterviews))
			t.render(cmd.OutOrStdout())
			return nil
		},
	}
}

func newAdminUsersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered candidates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := opts.client()
			if err != nil {
				return err
			}
			users, err := api.GetAllUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load users: %w", err)
			}

			t := newTable("ID", "NAME", "PHONE", "PROFESSION", "YEARS")
			for _, u := range users {
				t.add(strconv.FormatInt(u.ID, 10), u.FullName, u.PhoneNumber, u.Profession, strconv.Itoa(u.YearsOfExperience))
			}
			t.render(cmd.OutOrStdout())
			return nil
		},
	}
}

func newAdminInterviewsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "interviews",
		Short: "List every interview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := opts.client()
			if err != nil {
				return err
			}
			interviews, err := api.GetAllInterviews(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load interviews: %w", err)
			}
			renderInterviews(cmd.OutOrStdout(), interviews, true)
			return nil
		},
	}
}
