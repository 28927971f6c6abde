package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/terra-clan/interview-console/internal/auth"
	"github.com/terra-clan/interview-console/internal/wizard"
	"github.com/terra-clan/interview-console/pkg/client"
)

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var phone, otp string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a one-time code",
		Long: `Sign in with a one-time code sent to your phone.

The code is requested from the backend, then exchanged for tokens that are
stored in the credentials file. New numbers continue straight into
registration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, store, err := opts.client()
			if err != nil {
				return err
			}
			flow := auth.NewFlow(api, store)

			if err := askCode(cmd, flow, &phone, &otp); err != nil {
				return err
			}
			needsRegistration, err := flow.VerifyOTP(cmd.Context(), phone, otp)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !needsRegistration {
				fmt.Fprintf(out, "Signed in as %s\n", phone) //nolint:errcheck
				return nil
			}

			fmt.Fprintln(out, "No profile found for this number, let's create one.") //nolint:errcheck
			return register(cmd, flow, client.RegisterRequest{PhoneNumber: phone})
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&otp, "otp", "", "One-time code (skips sending a new one)")

	return cmd
}

func newRegisterCommand(opts *rootOptions) *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create the profile for the signed-in phone number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, store, err := opts.client()
			if err != nil {
				return err
			}
			return register(cmd, auth.NewFlow(api, store), req)
		},
	}

	cmd.Flags().StringVar(&req.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Profession, "profession", "", "Profession")
	cmd.Flags().IntVar(&req.YearsOfExperience, "years", 0, "Years of experience")

	return cmd
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, store, err := opts.client()
			if err != nil {
				return err
			}
			if err := auth.NewFlow(api, store).Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out") //nolint:errcheck
			return nil
		},
	}
}

// askCode prompts for whatever of phone and otp is missing. An OTP is only
// sent when the caller did not already supply one.
func askCode(cmd *cobra.Command, flow *auth.Flow, phone, otp *string) error {
	ctx, in, out := cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout()

	if strings.TrimSpace(*phone) == "" {
		if err := wizard.RunGroups(ctx, in, out, huh.NewGroup(
			huh.NewInput().Title("Phone number").Value(phone).Validate(notBlank("phone number")),
		)); err != nil {
			return err
		}
	}

	if strings.TrimSpace(*otp) != "" {
		return nil
	}
	if err := flow.SendOTP(ctx, *phone); err != nil {
		return err
	}
	fmt.Fprintf(out, "Code sent to %s\n", *phone) //nolint:errcheck

	return wizard.RunGroups(ctx, in, out, huh.NewGroup(
		huh.NewInput().Title("Verification code").Value(otp).Validate(notBlank("code")),
	))
}

func register(cmd *cobra.Command, flow *auth.Flow, req client.RegisterRequest) error {
	years := ""
	if req.YearsOfExperience > 0 {
		years = strconv.Itoa(req.YearsOfExperience)
	}

	var fields []huh.Field
	if req.FullName == "" {
		fields = append(fields, huh.NewInput().Title("Full name").Value(&req.FullName).Validate(notBlank("full name")))
	}
	if req.Profession == "" {
		fields = append(fields, huh.NewInput().Title("Profession").Value(&req.Profession).Validate(notBlank("profession")))
	}
	if years == "" {
		fields = append(fields, huh.NewInput().Title("Years of experience").Value(&years).Validate(validYears))
	}
	if len(fields) > 0 {
		if err := wizard.RunGroups(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), huh.NewGroup(fields...)); err != nil {
			return err
		}
	}

	n, err := parseYears(years)
	if err != nil {
		return err
	}
	req.YearsOfExperience = n

	if err := flow.Register(cmd.Context(), req); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", req.FullName) //nolint:errcheck
	return nil
}

func notBlank(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validYears(s string) error {
	_, err := parseYears(s)
	return err
}

func parseYears(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, errors.New("years of experience must be a whole number")
	}
	return n, nil
}
